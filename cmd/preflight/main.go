// cmd/preflight/main.go
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/hamed0406/portwatch/internal/config"
	"github.com/hamed0406/portwatch/internal/notify"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	envFile := ".env"
	if len(os.Args) > 1 {
		envFile = os.Args[1]
	}
	if err := godotenv.Load(envFile); err == nil {
		ok("loaded " + envFile)
	} else if !errors.Is(err, fs.ErrNotExist) {
		fail(envFile + ": " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err.Error())
	}
	if err := cfg.Validate(); err != nil {
		fail(err.Error())
	}
	target, _ := cfg.Target()
	ok(fmt.Sprintf("target %s via %s, timeout %s", target, cfg.ProbeMode, cfg.ProbeTimeout))

	p, _ := cfg.Policy()
	ok(fmt.Sprintf("cron every %s: first alert after %d runs (%s), repeat every %d runs at phase %d",
		p.Interval, p.FirstAlertAt, p.OfflineFor(p.FirstAlertAt), p.RepeatEvery, p.RepeatOffset))

	dir := filepath.Dir(cfg.StateFile)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		fail("STATE_FILE directory " + dir + " does not exist.")
	}
	if _, err := os.Stat(cfg.StateFile); errors.Is(err, fs.ErrNotExist) {
		warn("STATE_FILE " + cfg.StateFile + " not present yet; first run creates it.")
	} else {
		ok("STATE_FILE=" + cfg.StateFile)
	}

	email, push := cfg.EmailConfigured(), cfg.PushoverConfigured()
	if !email && !push {
		fail("no alert channel configured (set EMAIL_* or PUSHOVER_*); outages would go unnoticed.")
	}
	if email {
		if cfg.UsesBrevoAPI() {
			ok("email via Brevo API to " + cfg.ToEmailAddress)
		} else if host, port, err := notify.ResolveService(cfg.EmailService); err != nil {
			fail("EMAIL_SERVICE: " + err.Error())
		} else {
			ok(fmt.Sprintf("email via %s:%d to %s", host, port, cfg.ToEmailAddress))
		}
		if cfg.EmailInsecureTLS {
			warn("EMAIL_INSECURE_TLS is on; relay certificates are not verified.")
		}
	} else {
		warn("email channel incomplete; sends will fail and be logged.")
	}
	if push {
		ok(fmt.Sprintf("pushover priority %d", cfg.PushoverPriorityLevel()))
	} else {
		warn("pushover channel incomplete; sends will fail and be logged.")
	}

	ok("preflight passed")
}

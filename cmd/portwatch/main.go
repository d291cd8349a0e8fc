package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/config"
	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/logging"
	"github.com/hamed0406/portwatch/internal/monitor"
	"github.com/hamed0406/portwatch/internal/notify"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/repo/file"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is one invocation; the result is the process exit code.
func run(args []string) int {
	flags := pflag.NewFlagSet("portwatch", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file seeding the environment (ignored if missing)")
	stateFile := flags.String("state-file", "", "counter file, overrides STATE_FILE")
	logDir := flags.String("log-dir", "", "log directory, overrides LOG_DIR")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "portwatch: env file:", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "portwatch:", err)
		return 1
	}
	if *stateFile != "" {
		cfg.StateFile = *stateFile
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "portwatch: logger:", err)
		return 1
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", zap.Error(err))
		return 1
	}
	osFs := afero.NewOsFs()
	if err := checkStateDir(osFs, cfg.StateFile); err != nil {
		logger.Error("config_invalid", zap.Error(err))
		return 1
	}

	target, _ := cfg.Target()
	policy, _ := cfg.Policy()
	checker, _ := probe.New(cfg.ProbeMode, cfg.ProbeTimeout)

	mon := monitor.New(
		logger,
		file.NewWithFs(osFs, cfg.StateFile, logger),
		checker,
		buildNotifier(cfg, logger),
		monitor.Options{
			Target:          target,
			Policy:          policy,
			NodeName:        cfg.NodeName,
			AlertOnRecovery: cfg.AlertOnRecovery,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := mon.Run(ctx)
	if err != nil {
		logger.Error("run_aborted", zap.String("target", target), zap.Error(err))
		return 1
	}
	logger.Info("run_complete",
		zap.String("target", target),
		zap.Bool("reachable", out.Reachable),
		zap.Int("counter", out.Current),
		zap.Bool("alerted", out.Alerted),
	)
	return 0
}

// buildNotifier always wires both channels; one without credentials fails
// at send time and is logged like any other delivery failure.
func buildNotifier(cfg config.Config, logger *zap.Logger) notify.Multi {
	var email notify.Notifier
	if cfg.UsesBrevoAPI() {
		email = notify.NewBrevo(cfg.EmailPassword, cfg.Sender(), cfg.ToEmailAddress, "")
	} else {
		email = notify.NewEmail(notify.EmailConfig{
			Service:     cfg.EmailService,
			Username:    cfg.EmailUsername,
			Password:    cfg.EmailPassword,
			From:        cfg.Sender(),
			To:          cfg.ToEmailAddress,
			InsecureTLS: cfg.EmailInsecureTLS,
		})
	}
	if !cfg.EmailConfigured() {
		logger.Warn("channel_unconfigured", zap.String("channel", "email"))
	}
	if !cfg.PushoverConfigured() {
		logger.Warn("channel_unconfigured", zap.String("channel", "pushover"))
	}
	return notify.Multi{
		email,
		notify.NewPushover(cfg.PushoverToken, cfg.PushoverUser, cfg.PushoverPriorityLevel()),
	}
}

// checkStateDir catches a state path that can never be written, which would
// otherwise leave the monitor counting from zero forever.
func checkStateDir(fsys afero.Fs, path string) error {
	dir := filepath.Dir(path)
	fi, err := fsys.Stat(dir)
	if err != nil {
		return &domain.ConfigurationError{Field: "STATE_FILE", Reason: fmt.Sprintf("directory %s: %v", dir, err)}
	}
	if !fi.IsDir() {
		return &domain.ConfigurationError{Field: "STATE_FILE", Reason: fmt.Sprintf("%s is not a directory", dir)}
	}
	if err := file.NewWithFs(fsys, path, nil).Writable(); err != nil {
		return &domain.ConfigurationError{Field: "STATE_FILE", Reason: fmt.Sprintf("directory %s is not writable: %v", dir, err)}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/probe"
)

// Config is read once at startup and passed down; nothing reads the
// environment after that.
type Config struct {
	// probe target
	Host         string        `envconfig:"HOST"`
	Port         int           `envconfig:"PORT"`
	ProbeMode    string        `envconfig:"PROBE_MODE" default:"tcp"`
	ProbeTimeout time.Duration `envconfig:"PROBE_TIMEOUT" default:"1s"`

	// alert timing, in minutes; must stay in step with the cron cadence
	IntervalMinutes          int `envconfig:"INTERVAL_MINUTES" default:"5"`
	FirstAlertAfterMinutes   int `envconfig:"FIRST_ALERT_AFTER_MINUTES" default:"60"`
	RepeatAlertEveryMinutes  int `envconfig:"REPEAT_ALERT_EVERY_MINUTES" default:"360"`
	RepeatAlertOffsetMinutes int `envconfig:"REPEAT_ALERT_OFFSET_MINUTES" default:"300"`

	NodeName        string `envconfig:"NODE_NAME" default:"Lightning Node"`
	AlertOnRecovery bool   `envconfig:"ALERT_ON_RECOVERY" default:"false"`

	// email channel
	EmailService     string `envconfig:"EMAIL_SERVICE"`
	EmailUsername    string `envconfig:"EMAIL_USERNAME"`
	EmailPassword    string `envconfig:"EMAIL_PASSWORD"`
	EmailFrom        string `envconfig:"EMAIL_FROM"`
	ToEmailAddress   string `envconfig:"TO_EMAIL_ADDRESS"`
	EmailInsecureTLS bool   `envconfig:"EMAIL_INSECURE_TLS" default:"false"`

	// push channel; priority is parsed leniently, see PushoverPriority
	PushoverUser     string `envconfig:"PUSHOVER_USER"`
	PushoverToken    string `envconfig:"PUSHOVER_TOKEN"`
	PushoverPriority string `envconfig:"PUSHOVER_PRIORITY"`

	StateFile  string        `envconfig:"STATE_FILE" default:"state.db"`
	LogDir     string        `envconfig:"LOG_DIR" default:"logs"`
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"info"`
	RunTimeout time.Duration `envconfig:"RUN_TIMEOUT" default:"60s"`
}

// Load reads the environment without validating it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		var pe *envconfig.ParseError
		if errors.As(err, &pe) {
			return cfg, &domain.ConfigurationError{
				Field:  pe.KeyName,
				Reason: fmt.Sprintf("invalid %s value %q", pe.TypeName, pe.Value),
			}
		}
		return cfg, err
	}
	return cfg, nil
}

// FromEnv loads and validates.
func FromEnv() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports the first fatal problem as a *domain.ConfigurationError.
func (c Config) Validate() error {
	if _, err := c.Target(); err != nil {
		return err
	}
	if _, err := probe.New(c.ProbeMode, c.ProbeTimeout); err != nil {
		return err
	}
	if c.ProbeTimeout <= 0 {
		return &domain.ConfigurationError{Field: "PROBE_TIMEOUT", Reason: "must be positive"}
	}
	if c.RunTimeout <= c.ProbeTimeout {
		return &domain.ConfigurationError{Field: "RUN_TIMEOUT", Reason: "must exceed PROBE_TIMEOUT"}
	}
	if strings.TrimSpace(c.StateFile) == "" {
		return &domain.ConfigurationError{Field: "STATE_FILE", Reason: "is required"}
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Target is the validated host:port to probe.
func (c Config) Target() (string, error) {
	return probe.ParseTarget(c.Host, c.Port)
}

// Policy derives the alert thresholds from the minute settings.
func (c Config) Policy() (domain.Policy, error) {
	return domain.PolicyFromMinutes(
		c.IntervalMinutes,
		c.FirstAlertAfterMinutes,
		c.RepeatAlertEveryMinutes,
		c.RepeatAlertOffsetMinutes,
	)
}

// PushoverPriorityLevel is PUSHOVER_PRIORITY as an int; unset, unparseable
// or outside Pushover's -2..2 range gives 0.
func (c Config) PushoverPriorityLevel() int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PushoverPriority))
	if err != nil || n < -2 || n > 2 {
		return 0
	}
	return n
}

// UsesBrevoAPI reports whether email goes through the Brevo HTTP API.
func (c Config) UsesBrevoAPI() bool {
	return strings.EqualFold(strings.TrimSpace(c.EmailService), "brevo")
}

func (c Config) EmailConfigured() bool {
	if c.UsesBrevoAPI() {
		return c.EmailPassword != "" && c.ToEmailAddress != "" && (c.EmailFrom != "" || c.EmailUsername != "")
	}
	return c.EmailService != "" && c.EmailUsername != "" && c.EmailPassword != "" && c.ToEmailAddress != ""
}

func (c Config) PushoverConfigured() bool {
	return c.PushoverUser != "" && c.PushoverToken != ""
}

// Sender is the From address for email alerts.
func (c Config) Sender() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return c.EmailUsername
}

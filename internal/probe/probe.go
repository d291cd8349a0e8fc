package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hamed0406/portwatch/internal/domain"
)

// CheckResult is the unified result of a single probe.
//
// Success=false is the normal "unreachable" signal, not an error. Message
// carries a short classification of why the probe failed.
type CheckResult struct {
	Name      string  `json:"name"`
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	LatencyMS float64 `json:"latency_ms,omitempty"`
}

// Checker performs a single check for a given host:port target.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

const (
	ModeTCP  = "tcp"
	ModeICMP = "icmp"
)

// New builds the checker for mode.
func New(mode string, timeout time.Duration) (Checker, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeTCP:
		return NewTCPChecker(timeout), nil
	case ModeICMP:
		return NewICMPChecker(timeout), nil
	default:
		return nil, &domain.ConfigurationError{Field: "PROBE_MODE", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}

// ParseTarget validates host and port and joins them into a dialable address.
func ParseTarget(host string, port int) (string, error) {
	h := strings.TrimSpace(host)
	switch {
	case h == "":
		return "", &domain.ConfigurationError{Field: "HOST", Reason: "is required"}
	case strings.Contains(h, "://"):
		return "", &domain.ConfigurationError{Field: "HOST", Reason: "must be a host name, not a URL"}
	case strings.ContainsAny(h, " \t/"):
		return "", &domain.ConfigurationError{Field: "HOST", Reason: "contains invalid characters"}
	}
	if port < 1 || port > 65535 {
		return "", &domain.ConfigurationError{Field: "PORT", Reason: "must be between 1 and 65535"}
	}
	// tolerate a bracketed IPv6 literal
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	return net.JoinHostPort(h, fmt.Sprint(port)), nil
}

func latencySince(start time.Time) float64 {
	return time.Since(start).Seconds() * 1000 // ms
}

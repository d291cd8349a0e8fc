package probe

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// TCPChecker reports a target reachable when a TCP handshake completes
// within Timeout.
type TCPChecker struct {
	Timeout time.Duration
	Dialer  *net.Dialer
}

func NewTCPChecker(timeout time.Duration) *TCPChecker {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &TCPChecker{
		Timeout: timeout,
		Dialer:  &net.Dialer{},
	}
}

func (c *TCPChecker) Check(ctx context.Context, target string) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := c.Dialer.DialContext(ctx, "tcp", target)
	latency := latencySince(start)
	if err != nil {
		return CheckResult{Name: "TCP", Success: false, Message: classify(err), LatencyMS: latency}
	}
	_ = conn.Close()
	return CheckResult{Name: "TCP", Success: true, Message: "connected", LatencyMS: latency}
}

func classify(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr) && !dnsErr.IsTimeout:
		return "dns_error"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "refused"
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	default:
		return "unreachable"
	}
}

package probe

import (
	"context"
	"net"
	"time"

	"github.com/go-ping/ping"
)

// ICMPChecker pings the host part of the target and ignores the port.
// Unprivileged mode needs net.ipv4.ping_group_range to include the user.
type ICMPChecker struct {
	Timeout    time.Duration
	Count      int
	Privileged bool
}

func NewICMPChecker(timeout time.Duration) *ICMPChecker {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &ICMPChecker{Timeout: timeout, Count: 3}
}

func (c *ICMPChecker) Check(ctx context.Context, target string) CheckResult {
	host := target
	if h, _, err := net.SplitHostPort(target); err == nil {
		host = h
	}

	start := time.Now()
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return CheckResult{Name: "ICMP", Success: false, Message: classify(err), LatencyMS: latencySince(start)}
	}
	pinger.Count = c.Count
	pinger.Timeout = c.Timeout
	pinger.SetPrivileged(c.Privileged)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return CheckResult{Name: "ICMP", Success: false, Message: classify(err), LatencyMS: latencySince(start)}
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return CheckResult{Name: "ICMP", Success: false, Message: "timeout", LatencyMS: latencySince(start)}
	}
	return CheckResult{
		Name:      "ICMP",
		Success:   true,
		Message:   "reply",
		LatencyMS: float64(stats.AvgRtt) / float64(time.Millisecond),
	}
}

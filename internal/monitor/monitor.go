// Package monitor runs one check-and-decide cycle: load the downtime
// counter, probe the target, persist the new counter and alert when the
// policy says so.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/notify"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/repo"
)

type Options struct {
	Target          string // host:port
	Policy          domain.Policy
	NodeName        string
	AlertOnRecovery bool
	Now             func() time.Time
}

type Monitor struct {
	log      *zap.Logger
	store    repo.CounterStore
	checker  probe.Checker
	notifier notify.Notifier
	opts     Options
}

func New(
	log *zap.Logger,
	store repo.CounterStore,
	checker probe.Checker,
	notifier notify.Notifier,
	opts Options,
) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NodeName == "" {
		opts.NodeName = "Lightning Node"
	}
	return &Monitor{
		log:      log,
		store:    store,
		checker:  checker,
		notifier: notifier,
		opts:     opts,
	}
}

// Run performs exactly one cycle. Unreachability, storage trouble and
// channel failures are logged and absorbed. Errors are returned only for a
// cancelled context and for a state file that cannot be created; the
// counter is left untouched in both cases.
func (m *Monitor) Run(ctx context.Context) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}

	prev, err := m.store.Load(ctx)
	if err != nil {
		// a state file that cannot even be created would pin the counter
		// at 1 forever, so that one is fatal
		var se *domain.StorageError
		if errors.As(err, &se) && se.Op == "init" {
			m.log.Error("store_unusable", zap.Error(err))
			return domain.Outcome{}, err
		}
		// keep monitoring with a fresh counter rather than go dark
		m.log.Warn("store_load_error", zap.Error(err))
		prev = 0
	}
	out := domain.Outcome{Previous: prev}

	res := m.checker.Check(ctx, m.opts.Target)
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("probe %s: %w", m.opts.Target, err)
	}
	out.Reachable = res.Success

	if res.Success {
		out.Current = 0
		if prev == 0 {
			m.log.Debug("probe_up",
				zap.String("target", m.opts.Target),
				zap.Float64("latency_ms", res.LatencyMS),
			)
			return out, nil
		}
		m.log.Info("counter_reset",
			zap.String("target", m.opts.Target),
			zap.Int("from", prev),
			zap.Float64("latency_ms", res.LatencyMS),
		)
		out.Saved = m.save(ctx, 0)
		if m.opts.AlertOnRecovery && prev >= m.opts.Policy.FirstAlertAt {
			m.dispatch(ctx, m.recoverySubject(), m.recoveryBody(prev))
			out.Recovered = true
		}
		return out, nil
	}

	next := prev + 1
	out.Current = next
	m.log.Info("probe_down",
		zap.String("target", m.opts.Target),
		zap.String("reason", res.Message),
		zap.Int("from", prev),
		zap.Int("to", next),
	)
	out.Saved = m.save(ctx, next)

	if m.opts.Policy.ShouldAlert(next) {
		m.dispatch(ctx, m.downSubject(), m.downBody(next))
		out.Alerted = true
	}
	return out, nil
}

func (m *Monitor) save(ctx context.Context, v int) bool {
	if err := m.store.Save(ctx, v); err != nil {
		m.log.Error("store_save_error", zap.Int("value", v), zap.Error(err))
		return false
	}
	return true
}

// dispatch is best effort: each failed channel is logged on its own.
func (m *Monitor) dispatch(ctx context.Context, title, text string) {
	m.log.Info("alert_dispatch", zap.String("title", title), zap.String("text", text))
	err := m.notifier.Send(ctx, title, text)
	if err == nil {
		m.log.Info("alert_dispatched")
		return
	}
	for _, e := range multierr.Errors(err) {
		channel := m.notifier.Name()
		var ce *domain.ChannelError
		if errors.As(e, &ce) {
			channel = ce.Channel
		}
		m.log.Warn("channel_error", zap.String("channel", channel), zap.Error(e))
	}
}

func (m *Monitor) today() string {
	return m.opts.Now().Format("01/02/2006")
}

func (m *Monitor) downSubject() string {
	return fmt.Sprintf("⚡ %s Offline 🛑 (%s)", m.opts.NodeName, m.today())
}

func (m *Monitor) downBody(c int) string {
	return fmt.Sprintf("Server has been offline for %d minutes.", int(m.opts.Policy.OfflineFor(c).Minutes()))
}

func (m *Monitor) recoverySubject() string {
	return fmt.Sprintf("⚡ %s Back Online ✅ (%s)", m.opts.NodeName, m.today())
}

func (m *Monitor) recoveryBody(c int) string {
	return fmt.Sprintf("Server is reachable again after about %d minutes offline.", int(m.opts.Policy.OfflineFor(c).Minutes()))
}

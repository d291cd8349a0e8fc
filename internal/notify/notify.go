package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/portwatch/internal/domain"
)

// ErrMissingCredentials is returned by a channel that was configured
// without the settings it needs to deliver.
var ErrMissingCredentials = errors.New("missing credentials")

type Notifier interface {
	Name() string
	Send(ctx context.Context, title, text string) error
}

// Multi delivers through every channel concurrently. A failing or
// panicking channel does not stop the others; each failure comes back as
// a *domain.ChannelError inside a multierr.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, title, text string) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, n := range m {
		if n == nil {
			continue
		}
		i, n := i, n // per-iteration copies (go.mod targets go 1.21)
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &domain.ChannelError{Channel: n.Name(), Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			if err := n.Send(ctx, title, text); err != nil {
				errs[i] = &domain.ChannelError{Channel: n.Name(), Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()
	return multierr.Combine(errs...)
}

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gregdel/pushover"
)

// Emergency priority must carry retry/expire; these are the values we use.
const (
	pushoverRetry  = 60 * time.Second
	pushoverExpire = time.Hour
)

type Pushover struct {
	Token    string
	User     string
	Priority int
}

func NewPushover(token, user string, priority int) *Pushover {
	return &Pushover{
		Token:    token,
		User:     user,
		Priority: priority,
	}
}

func (p *Pushover) Name() string { return "pushover" }

func (p *Pushover) Send(ctx context.Context, title, text string) error {
	if p == nil || p.Token == "" || p.User == "" {
		return fmt.Errorf("pushover: %w", ErrMissingCredentials)
	}
	msg := pushover.NewMessageWithTitle(text, title)
	msg.Priority = p.Priority
	if p.Priority == pushover.PriorityEmergency {
		msg.Retry = pushoverRetry
		msg.Expire = pushoverExpire
	}

	// the client has no context support; stop waiting once ctx is done
	done := make(chan error, 1)
	go func() {
		_, err := pushover.New(p.Token).SendMessage(msg, pushover.NewRecipient(p.User))
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("pushover: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pushover: %w", ctx.Err())
	}
}

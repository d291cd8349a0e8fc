package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/hamed0406/portwatch/internal/domain"
)

type mockNotifier struct {
	mock.Mock
	name string
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Send(ctx context.Context, title, text string) error {
	return m.Called(title, text).Error(0)
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }
func (panicky) Send(context.Context, string, string) error { panic("boom") }

func TestMulti_EmailFailureStillSendsPush(t *testing.T) {
	email := &mockNotifier{name: "email"}
	push := &mockNotifier{name: "pushover"}
	email.On("Send", "T", "B").Return(errors.New("smtp down"))
	push.On("Send", "T", "B").Return(nil)

	err := Multi{email, push}.Send(context.Background(), "T", "B")

	email.AssertExpectations(t)
	push.AssertExpectations(t)
	errs := multierr.Errors(err)
	require.Len(t, errs, 1)
	var ce *domain.ChannelError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "email", ce.Channel)
}

func TestMulti_AllSucceed(t *testing.T) {
	a := &mockNotifier{name: "a"}
	b := &mockNotifier{name: "b"}
	a.On("Send", mock.Anything, mock.Anything).Return(nil)
	b.On("Send", mock.Anything, mock.Anything).Return(nil)

	assert.NoError(t, Multi{a, nil, b}.Send(context.Background(), "x", "y"))
	a.AssertNumberOfCalls(t, "Send", 1)
	b.AssertNumberOfCalls(t, "Send", 1)
}

func TestMulti_BothFailReportsBoth(t *testing.T) {
	a := &mockNotifier{name: "email"}
	b := &mockNotifier{name: "pushover"}
	a.On("Send", mock.Anything, mock.Anything).Return(ErrMissingCredentials)
	b.On("Send", mock.Anything, mock.Anything).Return(errors.New("503"))

	err := Multi{a, b}.Send(context.Background(), "x", "y")
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestMulti_PanicIsIsolated(t *testing.T) {
	var called atomic.Bool
	other := &mockNotifier{name: "pushover"}
	other.On("Send", mock.Anything, mock.Anything).Run(func(mock.Arguments) { called.Store(true) }).Return(nil)

	err := Multi{panicky{}, other}.Send(context.Background(), "x", "y")
	require.Error(t, err)
	assert.True(t, called.Load())
	assert.Contains(t, err.Error(), "panicky")
}

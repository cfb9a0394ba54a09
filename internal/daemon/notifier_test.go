package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

type recordingEnqueuer struct {
	requests []model.Request
	err      error
}

func (r *recordingEnqueuer) Enqueue(req model.Request) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.requests = append(r.requests, req)
	return "id", nil
}

func newTestNotifier() (*InternalNotifier, *recordingEnqueuer, *time.Time) {
	target := &recordingEnqueuer{}
	n := NewInternalNotifier(target, nil)
	clock := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }
	return n, target, &clock
}

func TestNotificationLevel_Kind(t *testing.T) {
	assert.Equal(t, model.KindInfo, NotificationLevelInfo.Kind())
	assert.Equal(t, model.KindWarning, NotificationLevelWarning.Kind())
	assert.Equal(t, model.KindError, NotificationLevelError.Kind())
}

func TestInternalNotifier_RateLimit(t *testing.T) {
	n, target, clock := newTestNotifier()

	assert.True(t, n.Notify("k", "First", "", NotificationLevelInfo))
	assert.False(t, n.Notify("k", "Second", "", NotificationLevelInfo))
	assert.True(t, n.Notify("other", "Other", "", NotificationLevelInfo))

	*clock = clock.Add(5 * time.Second)
	assert.True(t, n.Notify("k", "Third", "", NotificationLevelInfo))

	require.Len(t, target.requests, 3)
	assert.Equal(t, "Third", target.requests[2].Title)
}

func TestInternalNotifier_SetMinInterval(t *testing.T) {
	n, target, clock := newTestNotifier()
	n.SetMinInterval(time.Second)

	assert.True(t, n.Notify("k", "First", "", NotificationLevelInfo))
	*clock = clock.Add(999 * time.Millisecond)
	assert.False(t, n.Notify("k", "Second", "", NotificationLevelInfo))
	*clock = clock.Add(time.Millisecond)
	assert.True(t, n.Notify("k", "Third", "", NotificationLevelInfo))

	require.Len(t, target.requests, 2)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	n, target, _ := newTestNotifier()
	n.SetEnabled(false)

	assert.False(t, n.Notify("k", "x", "", NotificationLevelInfo))
	assert.Empty(t, target.requests)
}

func TestInternalNotifier_EnqueueError(t *testing.T) {
	n, target, _ := newTestNotifier()
	target.err = model.ErrInvalidConfiguration

	assert.False(t, n.Notify("k", "x", "", NotificationLevelInfo))
}

func TestInternalNotifier_Helpers(t *testing.T) {
	tests := []struct {
		name      string
		call      func(n *InternalNotifier)
		wantKind  model.Kind
		wantTitle string
		wantBody  string
	}{
		{
			name:      "config reloaded",
			call:      (*InternalNotifier).NotifyConfigReloaded,
			wantKind:  model.KindInfo,
			wantTitle: "Configuration Reloaded",
		},
		{
			name:      "config error",
			call:      func(n *InternalNotifier) { n.NotifyConfigError(errors.New("bad toml")) },
			wantKind:  model.KindWarning,
			wantTitle: "Configuration Error",
			wantBody:  "bad toml",
		},
		{
			name:      "startup",
			call:      func(n *InternalNotifier) { n.NotifyStartup("1.0.0") },
			wantKind:  model.KindInfo,
			wantTitle: "toastd Started",
			wantBody:  "v1.0.0",
		},
		{
			name:      "audio error",
			call:      func(n *InternalNotifier) { n.NotifyAudioError(errors.New("no device")) },
			wantKind:  model.KindError,
			wantTitle: "Audio Error",
			wantBody:  "no device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, target, _ := newTestNotifier()
			tt.call(n)

			require.Len(t, target.requests, 1)
			req := target.requests[0]
			assert.Equal(t, tt.wantKind, req.Kind)
			assert.Equal(t, tt.wantTitle, req.Title)
			assert.Contains(t, req.Body, tt.wantBody)
			assert.Equal(t, "toastd", req.Source)
		})
	}
}

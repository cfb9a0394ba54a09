package dbus

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

func TestEnqueueArgs_Request(t *testing.T) {
	tests := []struct {
		name         string
		args         EnqueueArgs
		wantKind     model.Kind
		wantDuration time.Duration
		wantAction   bool
		wantErr      bool
	}{
		{
			name:     "minimal",
			args:     EnqueueArgs{Title: "Saved"},
			wantKind: model.KindInfo,
		},
		{
			name:         "full",
			args:         EnqueueArgs{Kind: "booking", Title: "Table booked", Body: "19:30", CountdownLabel: "in 2h", MediaRef: "img/1.png", ActionLabel: "View", DurationMs: 8000},
			wantKind:     model.KindBooking,
			wantDuration: 8 * time.Second,
			wantAction:   true,
		},
		{
			name:     "negative duration means default",
			args:     EnqueueArgs{Kind: "error", Title: "Failed", DurationMs: -1},
			wantKind: model.KindError,
		},
		{
			name:    "unknown kind",
			args:    EnqueueArgs{Kind: "critical", Title: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.args.Request(func() {})
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, req.Kind)
			assert.Equal(t, tt.args.Title, req.Title)
			assert.Equal(t, tt.args.Body, req.Body)
			assert.Equal(t, tt.args.CountdownLabel, req.CountdownLabel)
			assert.Equal(t, tt.args.MediaRef, req.MediaRef)
			assert.Equal(t, tt.wantDuration, req.Duration)
			assert.Equal(t, "dbus", req.Source)
			if tt.wantAction {
				require.NotNil(t, req.Action)
				assert.Equal(t, tt.args.ActionLabel, req.Action.Label)
			} else {
				assert.Nil(t, req.Action)
			}
		})
	}
}

func TestEnqueueArgs_Values(t *testing.T) {
	args := EnqueueArgs{Kind: "info", Title: "t", Body: "b", CountdownLabel: "c", MediaRef: "m", ActionLabel: "a", DurationMs: 42}
	assert.Equal(t, []any{"info", "t", "b", "c", "m", "a", int32(42)}, args.Values())
}

func TestParseRemoval(t *testing.T) {
	tests := []struct {
		name   string
		signal *dbus.Signal
		want   Removal
		ok     bool
	}{
		{
			name:   "valid",
			signal: &dbus.Signal{Name: Interface + ".NotificationRemoved", Body: []any{"01ABC", "expired"}},
			want:   Removal{ID: "01ABC", Reason: "expired"},
			ok:     true,
		},
		{
			name:   "other signal",
			signal: &dbus.Signal{Name: Interface + ".ActionInvoked", Body: []any{"01ABC", "View"}},
		},
		{
			name:   "short body",
			signal: &dbus.Signal{Name: Interface + ".NotificationRemoved", Body: []any{"01ABC"}},
		},
		{
			name:   "wrong types",
			signal: &dbus.Signal{Name: Interface + ".NotificationRemoved", Body: []any{uint32(1), "expired"}},
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRemoval(tt.signal)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSnapshot(t *testing.T) {
	views, err := decodeSnapshot(`[{"id":"a","kind":"info","title":"A","layout_offset":0,"state":"visible","duration_ms":5000,"created_at":"2026-01-02T03:04:05Z"}]`)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "a", views[0].ID)
	assert.Equal(t, model.KindInfo, views[0].Kind)
	assert.Equal(t, int64(5000), views[0].DurationMs)

	_, err = decodeSnapshot("not json")
	assert.Error(t, err)
}

func TestToDBusError(t *testing.T) {
	invalid := toDBusError(errors.Join(model.ErrInvalidConfiguration, errors.New("title is empty")))
	assert.Equal(t, ErrorInvalidConfiguration, invalid.Name)

	other := toDBusError(errors.New("boom"))
	assert.Equal(t, ErrorFailed, other.Name)
	assert.Equal(t, []any{"boom"}, other.Body)
}

// fakeStack records calls made through the server.
type fakeStack struct {
	mu        sync.Mutex
	requests  []model.Request
	dismissed []string
	cleared   int
	err       error
	views     []model.View
}

func (f *fakeStack) Enqueue(req model.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.requests = append(f.requests, req)
	return "id-" + req.Title, nil
}

func (f *fakeStack) Dismiss(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, id)
	return true
}

func (f *fakeStack) DismissAll() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return 0
}

func (f *fakeStack) InvokeAction(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if "id-"+req.Title == id && req.Action != nil {
			req.Action.Run()
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStack) Snapshot() []model.View {
	return f.views
}

type emitted struct {
	name   string
	values []any
}

type fakeEmitter struct {
	mu      sync.Mutex
	signals []emitted
}

func (f *fakeEmitter) Emit(path dbus.ObjectPath, name string, values ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, emitted{name: name, values: values})
	return nil
}

func newTestServer() (*Server, *fakeStack, *fakeEmitter) {
	stack := &fakeStack{}
	emitter := &fakeEmitter{}
	s := NewServer(stack, nil)
	s.emitter = emitter
	return s, stack, emitter
}

func TestServer_Enqueue(t *testing.T) {
	s, stack, _ := newTestServer()

	id, dErr := s.Enqueue("success", "Saved", "", "", "", "", 0)
	require.Nil(t, dErr)
	assert.Equal(t, "id-Saved", id)
	require.Len(t, stack.requests, 1)
	assert.Equal(t, model.KindSuccess, stack.requests[0].Kind)

	_, dErr = s.Enqueue("bogus", "Saved", "", "", "", "", 0)
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorInvalidConfiguration, dErr.Name)

	stack.err = model.ErrInvalidConfiguration
	_, dErr = s.Enqueue("info", "", "", "", "", "", 0)
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorInvalidConfiguration, dErr.Name)
}

func TestServer_ActionEmitsSignal(t *testing.T) {
	s, _, emitter := newTestServer()

	id, dErr := s.Enqueue("booking", "Booked", "", "", "", "Open", 0)
	require.Nil(t, dErr)

	fired, dErr := s.InvokeAction(id)
	require.Nil(t, dErr)
	assert.True(t, fired)

	require.Len(t, emitter.signals, 1)
	assert.Equal(t, Interface+".ActionInvoked", emitter.signals[0].name)
	assert.Equal(t, []any{id, "Open"}, emitter.signals[0].values)
}

func TestServer_DismissAndList(t *testing.T) {
	s, stack, _ := newTestServer()
	stack.views = []model.View{{ID: "a", Kind: model.KindInfo, Title: "A", LayoutOffset: 0}}

	assert.Nil(t, s.Dismiss("a"))
	assert.Nil(t, s.DismissAll())
	assert.Equal(t, []string{"a"}, stack.dismissed)
	assert.Equal(t, 1, stack.cleared)

	data, dErr := s.List()
	require.Nil(t, dErr)
	var views []model.View
	require.NoError(t, json.Unmarshal([]byte(data), &views))
	assert.Equal(t, "a", views[0].ID)
}

func TestServer_EmitNotificationRemoved(t *testing.T) {
	s, _, emitter := newTestServer()

	require.NoError(t, s.EmitNotificationRemoved("a", "evicted"))
	require.Len(t, emitter.signals, 1)
	assert.Equal(t, Interface+".NotificationRemoved", emitter.signals[0].name)
	assert.Equal(t, []any{"a", "evicted"}, emitter.signals[0].values)

	disconnected := NewServer(&fakeStack{}, nil)
	assert.Error(t, disconnected.EmitNotificationRemoved("a", "evicted"))
}

func TestServer_GetServerInformation(t *testing.T) {
	s, _, _ := newTestServer()
	s.SetServerInfo(ServerInfo{Name: "toastd", Vendor: "jmylchreest", Version: "1.2.3", APIVersion: "1"})

	name, vendor, version, api, dErr := s.GetServerInformation()
	require.Nil(t, dErr)
	assert.Equal(t, "toastd", name)
	assert.Equal(t, "jmylchreest", vendor)
	assert.Equal(t, "1.2.3", version)
	assert.Equal(t, "1", api)
}

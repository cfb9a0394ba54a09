package dbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastd/internal/model"
)

// Client calls a running toastd over the session bus.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// Dial connects to the session bus. It does not check that toastd is running.
func Dial(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn:   conn,
		obj:    conn.Object(BusName, Path),
		logger: logger,
	}, nil
}

// Close closes the private bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, args ...any) *dbus.Call {
	c.logger.Debug("calling toastd", "method", method)
	return c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
}

// Enqueue sends a notification and returns its id.
func (c *Client) Enqueue(ctx context.Context, args EnqueueArgs) (string, error) {
	var id string
	if err := c.call(ctx, "Enqueue", args.Values()...).Store(&id); err != nil {
		return "", fmt.Errorf("enqueue failed: %w", err)
	}
	return id, nil
}

// Dismiss removes a notification by id.
func (c *Client) Dismiss(ctx context.Context, id string) error {
	if err := c.call(ctx, "Dismiss", id).Err; err != nil {
		return fmt.Errorf("dismiss failed: %w", err)
	}
	return nil
}

// DismissAll clears the visible set.
func (c *Client) DismissAll(ctx context.Context) error {
	if err := c.call(ctx, "DismissAll").Err; err != nil {
		return fmt.Errorf("dismiss all failed: %w", err)
	}
	return nil
}

// InvokeAction runs a notification's action and reports whether it fired.
func (c *Client) InvokeAction(ctx context.Context, id string) (bool, error) {
	var fired bool
	if err := c.call(ctx, "InvokeAction", id).Store(&fired); err != nil {
		return false, fmt.Errorf("invoke action failed: %w", err)
	}
	return fired, nil
}

// List returns the visible set.
func (c *Client) List(ctx context.Context) ([]model.View, error) {
	var data string
	if err := c.call(ctx, "List").Store(&data); err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	return decodeSnapshot(data)
}

// ServerInformation returns the daemon's identification.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.call(ctx, "GetServerInformation").Store(&info.Name, &info.Vendor, &info.Version, &info.APIVersion)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("get server information failed: %w", err)
	}
	return info, nil
}

// WatchRemovals subscribes to NotificationRemoved signals until ctx is done.
// The returned channel is closed when watching stops.
func (c *Client) WatchRemovals(ctx context.Context) (<-chan Removal, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember(SignalNotificationRemoved),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return nil, fmt.Errorf("failed to add match rule: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	out := make(chan Removal, 16)
	go func() {
		defer close(out)
		defer c.conn.RemoveSignal(signals)

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				removal, ok := parseRemoval(sig)
				if !ok {
					continue
				}
				select {
				case out <- removal:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// decodeSnapshot parses the JSON returned by List.
func decodeSnapshot(data string) ([]model.View, error) {
	var views []model.View
	if err := json.Unmarshal([]byte(data), &views); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return views, nil
}

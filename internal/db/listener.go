package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// NotificationHandler receives asynchronous notifications for a channel.
// Handlers run on the notification loop goroutine and should return quickly.
type NotificationHandler func(ctx context.Context, n *pgconn.Notification)

// Listener subscribes a handler to a notification channel. Identity is the
// (Channel, Name) pair: adding the same pair twice is a no-op, as is removing
// a pair that was never added.
type Listener struct {
	Channel string
	Name    string
	Handler NotificationHandler
}

// NewListener creates a Listener with a generated name. Use NamedListener
// when the subscription must be removable by a stable identity.
func NewListener(channel string, handler NotificationHandler) Listener {
	return NamedListener(channel, uuid.NewString(), handler)
}

// NamedListener creates a Listener identified by (channel, name).
func NamedListener(channel, name string, handler NotificationHandler) Listener {
	return Listener{Channel: channel, Name: name, Handler: handler}
}

func (l Listener) same(other Listener) bool {
	return l.Channel == other.Channel && l.Name == other.Name
}

// AddListeners registers the listeners that are not already tracked. For each
// channel gaining its first listener a LISTEN is issued on the dedicated
// connection. Without a listener connection (manager not started) the set is
// still updated and the channels are armed at Start.
func (m *Manager) AddListeners(ctx context.Context, listeners ...Listener) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listMu.Lock()
	var newChannels []string
	for _, l := range listeners {
		if m.hasListener(l) {
			continue
		}
		if m.channelCount(l.Channel) == 0 {
			newChannels = append(newChannels, l.Channel)
		}
		m.listeners = append(m.listeners, l)
	}
	m.listMu.Unlock()

	if m.listenerConn == nil || len(newChannels) == 0 {
		return nil
	}

	return m.withNotifyPausedLocked(func() error {
		for _, channel := range newChannels {
			if err := m.listenLocked(ctx, channel); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveListeners drops the listeners that are currently tracked. When the
// last listener for a channel is removed an UNLISTEN is issued. Unknown
// pairs are ignored.
func (m *Manager) RemoveListeners(ctx context.Context, listeners ...Listener) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listMu.Lock()
	var drainedChannels []string
	for _, l := range listeners {
		if !m.hasListener(l) {
			continue
		}
		m.dropListener(l)
		if m.channelCount(l.Channel) == 0 {
			drainedChannels = append(drainedChannels, l.Channel)
		}
	}
	m.listMu.Unlock()

	if m.listenerConn == nil || len(drainedChannels) == 0 {
		return nil
	}

	return m.withNotifyPausedLocked(func() error {
		for _, channel := range drainedChannels {
			if err := m.unlistenLocked(ctx, channel); err != nil {
				return err
			}
		}
		return nil
	})
}

// Listeners returns a snapshot of the tracked listener set.
func (m *Manager) Listeners() []Listener {
	m.listMu.RLock()
	defer m.listMu.RUnlock()

	out := make([]Listener, len(m.listeners))
	copy(out, m.listeners)
	return out
}

// hasListener reports set membership. Caller holds listMu.
func (m *Manager) hasListener(l Listener) bool {
	for _, existing := range m.listeners {
		if existing.same(l) {
			return true
		}
	}
	return false
}

// dropListener removes the first matching pair. Caller holds listMu.
func (m *Manager) dropListener(l Listener) {
	for i, existing := range m.listeners {
		if existing.same(l) {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

// channelCount counts tracked listeners on a channel. Caller holds listMu.
func (m *Manager) channelCount(channel string) int {
	count := 0
	for _, l := range m.listeners {
		if l.Channel == channel {
			count++
		}
	}
	return count
}

func (m *Manager) listenLocked(ctx context.Context, channel string) error {
	_, err := m.listenerConn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
	if err != nil {
		return fmt.Errorf("failed to listen on channel %q: %w", channel, err)
	}
	return nil
}

func (m *Manager) unlistenLocked(ctx context.Context, channel string) error {
	_, err := m.listenerConn.Exec(ctx, "UNLISTEN "+pgx.Identifier{channel}.Sanitize())
	if err != nil {
		return fmt.Errorf("failed to unlisten channel %q: %w", channel, err)
	}
	return nil
}

// armListenerLocked claims the dedicated connection from the pool, re-issues
// LISTEN for every tracked channel, and starts the notification loop.
// Caller holds m.mu.
func (m *Manager) armListenerLocked(ctx context.Context) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire listener connection: %w", pgdata.ErrConnection, err)
	}
	m.listenerConn = conn

	m.listMu.RLock()
	channels := make([]string, 0, len(m.listeners))
	seen := map[string]bool{}
	for _, l := range m.listeners {
		if !seen[l.Channel] {
			seen[l.Channel] = true
			channels = append(channels, l.Channel)
		}
	}
	m.listMu.RUnlock()

	for _, channel := range channels {
		if err := m.listenLocked(ctx, channel); err != nil {
			return err
		}
	}

	m.startNotifyLocked()
	return nil
}

// releaseListenerLocked stops the notification loop and returns the
// dedicated connection to the pool. Caller holds m.mu.
func (m *Manager) releaseListenerLocked() {
	m.stopNotifyLocked()
	if m.listenerConn != nil {
		m.listenerConn.Release()
		m.listenerConn = nil
	}
}

func (m *Manager) startNotifyLocked() {
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.notifyCancel = cancel
	m.notifyDone = done
	go m.notifyLoop(loopCtx, m.listenerConn, done)
}

func (m *Manager) stopNotifyLocked() {
	if m.notifyCancel == nil {
		return
	}
	m.notifyCancel()
	<-m.notifyDone
	m.notifyCancel = nil
	m.notifyDone = nil
}

// withNotifyPausedLocked briefly parks the notification loop so LISTEN and
// UNLISTEN statements do not contend with WaitForNotification for the
// dedicated connection. Caller holds m.mu.
func (m *Manager) withNotifyPausedLocked(fn func() error) error {
	m.stopNotifyLocked()
	defer m.startNotifyLocked()
	return fn()
}

// notifyLoop blocks on the dedicated connection and dispatches notifications
// to the handlers subscribed to the originating channel. It exits on context
// cancellation or a connection error; a broken listener connection is
// restored by the next Recreate.
func (m *Manager) notifyLoop(ctx context.Context, conn pgdata.PooledConn, done chan struct{}) {
	defer close(done)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("notification listener stopped: %v", err)
			return
		}

		for _, handler := range m.handlersFor(n.Channel) {
			handler(ctx, n)
		}
	}
}

func (m *Manager) handlersFor(channel string) []NotificationHandler {
	m.listMu.RLock()
	defer m.listMu.RUnlock()

	var handlers []NotificationHandler
	for _, l := range m.listeners {
		if l.Channel == channel && l.Handler != nil {
			handlers = append(handlers, l.Handler)
		}
	}
	return handlers
}

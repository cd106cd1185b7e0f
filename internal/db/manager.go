package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avibot-labs/pgdata/internal/logging"
	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// Connection pool configuration constants.
const (
	// DefaultMaxConns limits concurrent connections; one is permanently
	// claimed by the listener connection.
	DefaultMaxConns = 10

	// DefaultMinConns keeps at least the listener connection plus one worker
	// alive in the pool.
	DefaultMinConns = 2

	// DefaultMaxConnIdleTime keeps idle connections around long enough to
	// ride out quiet periods without reconnect churn.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// Manager owns the connection pool and the dedicated listener connection.
//
// All pool-handle mutation (Start, Recreate, Close, listener registry
// changes) runs under a single mutex, so Recreate cannot race with itself or
// with Close. Query traffic reads the handle under the same mutex but runs
// its I/O outside it.
type Manager struct {
	cfg      *pgdata.ConnectionConfig
	connStr  string
	logger   pgdata.Logger
	openPool func(ctx context.Context) (pgdata.DBPool, error)

	mu           sync.Mutex
	pool         pgdata.DBPool
	listenerConn pgdata.PooledConn
	notifyCancel context.CancelFunc
	notifyDone   chan struct{}

	// listMu guards the listener set separately from the lifecycle mutex so
	// the notification loop can snapshot handlers without blocking on (or
	// deadlocking with) pool replacement.
	listMu    sync.RWMutex
	listeners []Listener
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger. Defaults to a NullLogger.
func WithLogger(logger pgdata.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithPoolOpener overrides how the pool is opened. Tests use this to
// substitute fake pools; the default opens a pgx pool against the configured
// server.
func WithPoolOpener(open func(ctx context.Context) (pgdata.DBPool, error)) ManagerOption {
	return func(m *Manager) { m.openPool = open }
}

// NewManager creates a Manager for the given connection parameters. The pool
// is not opened until Start.
func NewManager(cfg *pgdata.ConnectionConfig, opts ...ManagerOption) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:       cfg,
		connStr:   BuildConnString(cfg),
		logger:    logging.NewNullLogger(),
		listeners: []Listener{},
	}
	m.openPool = m.openPgxPool

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Start opens the pool and claims the listener connection. A connection
// failure wraps pgdata.ErrConnection and is not retried here; recovery from
// later transport breaks goes through Recreate.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		return nil
	}

	m.logger.Info("starting database manager for %s", RedactConnString(m.connStr))

	pool, err := m.openPool(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", pgdata.ErrConnection, err)
	}
	m.pool = pool

	return m.armListenerLocked(ctx)
}

// Recreate discards the current pool, which is presumed dead, and opens a
// fresh one, re-claiming the listener connection and re-arming tracked
// listeners. Each call produces a fresh pool regardless of prior state.
func (m *Manager) Recreate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("re-creating database pool")

	m.releaseListenerLocked()
	if old := m.pool; old != nil {
		// The backing connections are presumed dead; closing can block on
		// them, so it happens off the lock path.
		go old.Close()
		m.pool = nil
	}

	pool, err := m.openPool(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", pgdata.ErrConnection, err)
	}
	m.pool = pool

	return m.armListenerLocked(ctx)
}

// Close releases the listener connection and closes the pool, waiting for
// in-flight operations to finish. Calling Close on a manager that was never
// started is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return nil
	}

	m.logger.Info("closing database manager")

	m.releaseListenerLocked()
	m.pool.Close()
	m.pool = nil

	return nil
}

// acquire checks a connection out of the pool for a single call. The pool
// handle is read under the mutex; the blocking acquire itself runs outside
// it so registry and lifecycle operations are not stalled by pool pressure.
func (m *Manager) acquire(ctx context.Context) (pgdata.PooledConn, error) {
	m.mu.Lock()
	pool := m.pool
	m.mu.Unlock()

	if pool == nil {
		return nil, fmt.Errorf("%w: manager not started", pgdata.ErrConnection)
	}

	return pool.Acquire(ctx)
}

// openPgxPool opens a pgx pool whose connections decode JSON and JSONB
// columns into native structured values.
func (m *Manager) openPgxPool(ctx context.Context) (pgdata.DBPool, error) {
	poolConfig, err := pgxpool.ParseConfig(m.connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.AfterConnect = initConn

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newPoolAdapter(pool), nil
}

// initConn installs encoding/json codecs for the JSON type family on every
// new connection, so json/jsonb values cross the wire as structured values
// rather than raw text.
func initConn(ctx context.Context, conn *pgx.Conn) error {
	tm := conn.TypeMap()
	tm.RegisterType(&pgtype.Type{
		Name: "json",
		OID:  pgtype.JSONOID,
		Codec: &pgtype.JSONCodec{
			Marshal:   json.Marshal,
			Unmarshal: json.Unmarshal,
		},
	})
	tm.RegisterType(&pgtype.Type{
		Name: "jsonb",
		OID:  pgtype.JSONBOID,
		Codec: &pgtype.JSONBCodec{
			Marshal:   json.Marshal,
			Unmarshal: json.Unmarshal,
		},
	})
	return nil
}

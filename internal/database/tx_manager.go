package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lshigami/quizgrader/config"
	"github.com/lshigami/quizgrader/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

const defaultAcquireTimeout = 20 * time.Second

var (
	// ErrAcquireTimeout means no write slot or connection became free in time.
	ErrAcquireTimeout = errors.New("timed out acquiring a write transaction")
	// ErrTxDone is returned when Commit or Rollback runs on a finished Tx.
	ErrTxDone = errors.New("transaction has already been committed or rolled back")
	// ErrPoolTooSmall means the connection pool cannot serve a write and a read at once.
	ErrPoolTooSmall = errors.New("connection pool too small for write transactions")
)

// TxManager hands out exclusive write transactions from a bounded pool.
// Each Tx owns one writer slot and one dedicated connection until it is
// committed or rolled back.
type TxManager struct {
	db      *gorm.DB
	slots   *semaphore.Weighted
	size    int64
	timeout time.Duration
	inUse   atomic.Int64
}

// NewTxManager sizes the writer pool from configuration. sqlite allows a single
// writer, so it always gets one slot and contention queues on the semaphore.
func NewTxManager(db *gorm.DB, cfg *config.Config) (*TxManager, error) {
	slots := cfg.Database.WriteSlots
	if cfg.Database.Driver == "sqlite" && slots != 1 {
		log.Warn().Int("configured", slots).Msg("TxManager: sqlite supports one writer, using a single write slot")
		slots = 1
	}
	return NewTxManagerWithLimits(db, slots, cfg.Database.AcquireTimeout)
}

// NewTxManagerWithLimits keeps at least one pooled connection free for
// reference reads: slots are clamped to MaxOpenConns-1 when the pool is
// bounded, and a pool of one connection is rejected.
func NewTxManagerWithLimits(db *gorm.DB, slots int, timeout time.Duration) (*TxManager, error) {
	if slots <= 0 {
		slots = 1
	}
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	if maxOpen := sqlDB.Stats().MaxOpenConnections; maxOpen > 0 {
		if maxOpen < 2 {
			return nil, fmt.Errorf("%w: max open connections is %d, need at least 2", ErrPoolTooSmall, maxOpen)
		}
		if slots >= maxOpen {
			log.Warn().Int("configured", slots).Int("maxOpenConns", maxOpen).Msg("TxManager: write slots clamped below the connection pool size")
			slots = maxOpen - 1
		}
	}

	return &TxManager{
		db:      db,
		slots:   semaphore.NewWeighted(int64(slots)),
		size:    int64(slots),
		timeout: timeout,
	}, nil
}

// Acquire waits at most the configured timeout for a writer slot and a
// connection, then begins a transaction on that connection. The transaction
// itself is detached from ctx cancellation: once begun it only ends through
// Commit or Rollback.
func (m *TxManager) Acquire(ctx context.Context) (*Tx, error) {
	start := time.Now()
	acquireCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.slots.Acquire(acquireCtx, 1); err != nil {
		return nil, m.acquireFailed(start, err)
	}
	metrics.WriteSlotsInUse.Set(float64(m.inUse.Add(1)))

	sqlDB, err := m.db.DB()
	if err != nil {
		m.releaseSlot()
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	conn, err := sqlDB.Conn(acquireCtx)
	if err != nil {
		m.releaseSlot()
		return nil, m.acquireFailed(start, err)
	}

	session := m.db.Session(&gorm.Session{NewDB: true, Context: context.WithoutCancel(ctx)})
	session.Statement.ConnPool = conn
	gtx := session.Begin()
	if gtx.Error != nil {
		_ = conn.Close()
		m.releaseSlot()
		return nil, fmt.Errorf("failed to begin transaction: %w", gtx.Error)
	}

	metrics.TxAcquireWait.Observe(time.Since(start).Seconds())
	return &Tx{db: gtx, conn: conn, manager: m}, nil
}

// InUse reports how many writer slots are currently held.
func (m *TxManager) InUse() int64 {
	return m.inUse.Load()
}

// Capacity reports the size of the writer pool.
func (m *TxManager) Capacity() int64 {
	return m.size
}

func (m *TxManager) acquireFailed(start time.Time, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.TxAcquireTimeouts.Inc()
		log.Warn().Dur("waited", time.Since(start)).Int64("capacity", m.size).Msg("TxManager: write pool exhausted")
		return fmt.Errorf("%w after %s", ErrAcquireTimeout, m.timeout)
	}
	return fmt.Errorf("failed to acquire write transaction: %w", err)
}

func (m *TxManager) releaseSlot() {
	metrics.WriteSlotsInUse.Set(float64(m.inUse.Add(-1)))
	m.slots.Release(1)
}

// Tx is a write transaction bound to one pooled connection.
type Tx struct {
	db      *gorm.DB
	conn    *sql.Conn
	manager *TxManager

	mu       sync.Mutex
	finished bool
	release  sync.Once
}

// DB returns the gorm handle that runs statements inside this transaction.
func (t *Tx) DB() *gorm.DB {
	return t.db
}

func (t *Tx) Commit() error {
	return t.finish(func() error { return t.db.Commit().Error })
}

func (t *Tx) Rollback() error {
	return t.finish(func() error { return t.db.Rollback().Error })
}

// Close rolls back an unfinished transaction. It is safe to defer right
// after Acquire and is a no-op once Commit or Rollback has run.
func (t *Tx) Close() {
	t.mu.Lock()
	finished := t.finished
	t.mu.Unlock()
	if finished {
		return
	}
	if err := t.Rollback(); err != nil && !errors.Is(err, ErrTxDone) {
		log.Error().Err(err).Msg("TxManager: rollback on close failed")
	}
}

func (t *Tx) finish(end func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return ErrTxDone
	}
	t.finished = true
	err := end()
	t.release.Do(func() {
		if cerr := t.conn.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("TxManager: failed to return connection to pool")
		}
		t.manager.releaseSlot()
	})
	return err
}

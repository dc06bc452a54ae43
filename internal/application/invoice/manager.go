package invoice

import (
	"context"
	"sync"
	"time"

	goCache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Session registry defaults
const (
	DefaultSessionIdleTTL  = 30 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

// SessionFactory builds a session for an owner
type SessionFactory func(ownerID string) *Session

// SessionManager keeps one live session per owner.
// Sessions idle for longer than the TTL are evicted; eviction flushes any
// pending save first.
type SessionManager struct {
	factory      SessionFactory
	cache        *goCache.Cache
	flushTimeout time.Duration
	logger       *zap.Logger

	mu sync.Mutex
	wg sync.WaitGroup

	evictMu  sync.Mutex
	evicting map[string]chan struct{}
}

// SessionManagerConfig holds the session registry settings
type SessionManagerConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	FlushTimeout    time.Duration
}

// NewSessionManager creates a session manager
func NewSessionManager(factory SessionFactory, cfg SessionManagerConfig, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultSessionIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultSaveTimeout
	}

	m := &SessionManager{
		factory:      factory,
		cache:        goCache.New(cfg.IdleTTL, cfg.CleanupInterval),
		flushTimeout: cfg.FlushTimeout,
		logger:       logger,
		evicting:     make(map[string]chan struct{}),
	}
	m.cache.OnEvicted(m.onEvicted)
	return m
}

// Get returns the owner's session, loading it on first use.
// Each call extends the session's idle deadline.
func (m *SessionManager) Get(ctx context.Context, ownerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(ownerID); ok {
		session := v.(*Session)
		m.cache.SetDefault(ownerID, session)
		return session, nil
	}

	// An expired session may still hold unsaved edits; evict it and let its
	// flush finish before loading the stored copy.
	m.cache.DeleteExpired()
	if err := m.waitEviction(ctx, ownerID); err != nil {
		return nil, err
	}

	session := m.factory(ownerID)
	if _, err := session.Start(ctx); err != nil {
		return nil, err
	}
	m.cache.SetDefault(ownerID, session)
	m.logger.Debug("session started", zap.String("owner_id", ownerID))
	return session, nil
}

// Evict removes the owner's session after flushing it
func (m *SessionManager) Evict(ownerID string) {
	m.cache.Delete(ownerID)
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	return m.cache.ItemCount()
}

// CloseAll flushes every session and empties the registry.
// It also waits for evictions still flushing in the background.
func (m *SessionManager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	items := m.cache.Items()
	m.cache.Flush()
	m.mu.Unlock()

	var firstErr error
	for ownerID, item := range items {
		session := item.Object.(*Session)
		if err := session.Close(ctx); err != nil {
			m.logger.Error("failed to flush session",
				zap.String("owner_id", ownerID),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	m.wg.Wait()
	return firstErr
}

func (m *SessionManager) onEvicted(ownerID string, v interface{}) {
	session, ok := v.(*Session)
	if !ok {
		return
	}
	done := make(chan struct{})
	m.evictMu.Lock()
	m.evicting[ownerID] = done
	m.evictMu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.evictMu.Lock()
			if m.evicting[ownerID] == done {
				delete(m.evicting, ownerID)
			}
			m.evictMu.Unlock()
			close(done)
		}()
		ctx, cancel := context.WithTimeout(context.Background(), m.flushTimeout)
		defer cancel()
		if err := session.Close(ctx); err != nil {
			m.logger.Error("failed to flush evicted session",
				zap.String("owner_id", ownerID),
				zap.Error(err))
			return
		}
		m.logger.Debug("session evicted", zap.String("owner_id", ownerID))
	}()
}

func (m *SessionManager) waitEviction(ctx context.Context, ownerID string) error {
	m.evictMu.Lock()
	done, ok := m.evicting[ownerID]
	m.evictMu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package session owns the bearer credential used by every backend call:
// it keeps the active token in memory, mirrors it into a durable slot, attaches
// it to outbound requests and drops it when the backend answers 401.
package session

import (
	"context"
	"net/http"
	"sync"

	"orl-assistant/internal/pkg/logger"
	"orl-assistant/internal/repository/contract"
	"orl-assistant/internal/xano"
	"orl-assistant/pkg/events"
)

const (
	logModule  = "SESSION"
	DefaultKey = "xano_token"
)

// UnauthorizedFunc is told to send the user back to the login entry point.
type UnauthorizedFunc func(ctx context.Context)

type Manager struct {
	mu      sync.RWMutex
	token   string
	present bool
	// gen counts in-memory changes. A durable write only lands if no newer
	// change was staged before it got the slot, so the slot always ends up
	// holding the value of the last SetToken/ClearToken.
	gen     uint64
	writeMu sync.Mutex

	repo      contract.TokenRepository
	key       string
	logger    logger.ILogger
	publisher events.Publisher

	hooksMu sync.RWMutex
	hooks   []UnauthorizedFunc
}

type Option func(*Manager)

func WithKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// NewManager starts with no token. repo may be nil when no durable storage is
// available; the manager then works in memory only.
func NewManager(repo contract.TokenRepository, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		key:    DefaultKey,
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns the active credential. It has no side effects.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.present
}

// SetToken replaces the credential. The token is opaque and not validated;
// a failure to persist it is logged and otherwise ignored.
func (m *Manager) SetToken(ctx context.Context, token string) {
	m.StageToken(token)(ctx)
}

// StageToken swaps the in-memory credential right away and returns the step
// that persists it and announces the change. Callers that hold their own lock
// can stage under it and persist after releasing it.
func (m *Manager) StageToken(token string) func(ctx context.Context) {
	m.mu.Lock()
	m.token = token
	m.present = true
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	return func(ctx context.Context) {
		if m.persist(gen, func() error { return m.repo.Set(ctx, m.key, token) },
			"Failed to persist token, continuing in memory") {
			m.publish(ctx, events.TypeTokenSet, nil)
		}
	}
}

// ClearToken drops the credential and its durable copy. Safe to call with no token set.
func (m *Manager) ClearToken(ctx context.Context) {
	m.mu.Lock()
	had := m.present
	m.token = ""
	m.present = false
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	current := m.persist(gen, func() error { return m.repo.Delete(ctx, m.key) },
		"Failed to remove persisted token")

	if had && current {
		m.publish(ctx, events.TypeTokenCleared, nil)
	}
}

// persist runs write for change gen unless a newer change has been staged,
// and reports whether gen was still the latest.
func (m *Manager) persist(gen uint64, write func() error, failure string) bool {
	if m.repo == nil {
		return m.current(gen)
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if !m.current(gen) {
		return false
	}
	if err := write(); err != nil {
		m.logger.Warn(logModule, failure, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return true
}

func (m *Manager) current(gen uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen == gen
}

// InitFromStorage loads a previously persisted token into memory and reports
// whether one was found. Missing storage or a read failure leave the session untouched.
func (m *Manager) InitFromStorage(ctx context.Context) bool {
	if m.repo == nil {
		return false
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	token, found, err := m.repo.Get(ctx, m.key)
	if err != nil {
		m.logger.Warn(logModule, "Token storage unavailable, starting without session", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if !found || token == "" {
		return false
	}

	m.mu.Lock()
	if m.gen != gen {
		// Set or cleared while the slot was being read; that change wins.
		m.mu.Unlock()
		return false
	}
	m.token = token
	m.present = true
	m.mu.Unlock()

	m.logger.Debug(logModule, "Session restored from storage", nil)
	return true
}

// OnUnauthorized registers a re-authentication hook. Hooks run once for every
// 401 observed, in registration order.
func (m *Manager) OnUnauthorized(fn UnauthorizedFunc) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// HandleUnauthorized is the global reaction to a rejected credential: clear the
// session, then signal the hosting UI.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.ClearToken(ctx)
	m.logger.Info(logModule, "Backend rejected credential, session cleared", nil)
	m.publish(ctx, events.TypeUnauthorized, nil)

	m.hooksMu.RLock()
	hooks := make([]UnauthorizedFunc, len(m.hooks))
	copy(hooks, m.hooks)
	m.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx)
	}
}

// Middleware attaches the bearer header to outbound calls and reacts to 401
// answers. Other statuses pass through untouched.
func (m *Manager) Middleware() xano.Middleware {
	return xano.MiddlewareFuncs{
		Request: func(req *http.Request) error {
			if tok, err := m.TokenSource().Token(); err == nil && tok.AccessToken != "" {
				tok.SetAuthHeader(req)
			}
			return nil
		},
		Response: func(resp *http.Response) error {
			if resp.StatusCode == http.StatusUnauthorized {
				ctx := context.Background()
				if resp.Request != nil {
					ctx = resp.Request.Context()
				}
				m.HandleUnauthorized(ctx)
			}
			return nil
		},
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		m.logger.Warn(logModule, "Failed to publish session event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/auth"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/cart"

	"github.com/rs/zerolog/log"
)

const DefaultSessionIdleTTL = 30 * time.Minute

// Session is everything the storefront keeps for one browser session.
type Session struct {
	ID   string
	Auth *auth.Session
	Cart *cart.Store
}

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

type Sessions struct {
	tokens           auth.TokenStore
	pricer           cart.Pricer
	reconcileTimeout time.Duration
	idleTTL          time.Duration
	now              func() time.Time

	mu    sync.Mutex
	items map[string]*sessionEntry
}

type SessionsOption func(*Sessions)

// WithIdleTTL sets how long an unused session is kept. Zero keeps sessions forever.
func WithIdleTTL(ttl time.Duration) SessionsOption {
	return func(s *Sessions) { s.idleTTL = ttl }
}

func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

func NewSessions(tokens auth.TokenStore, pricer cart.Pricer, reconcileTimeout time.Duration, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		tokens:           tokens,
		pricer:           pricer,
		reconcileTimeout: reconcileTimeout,
		idleTTL:          DefaultSessionIdleTTL,
		now:              time.Now,
		items:            make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session for id, creating it on first use. A new session
// restores any persisted token and wires its cart to the session-ended signal.
func (s *Sessions) Get(ctx context.Context, id string) *Session {
	if sess := s.lookup(id); sess != nil {
		return sess
	}

	authSession := auth.NewSession(id, s.tokens)
	if err := authSession.Restore(ctx); err != nil {
		log.Error().Err(err).Str("session_id", id).Msg("Failed to restore session token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.items[id]; ok {
		entry.lastUsed = s.now()
		return entry.session
	}

	sess := &Session{
		ID:   id,
		Auth: authSession,
		Cart: cart.NewStore(s.pricer,
			cart.WithSessionSignal(authSession),
			cart.WithReconcileTimeout(s.reconcileTimeout),
			cart.WithLogger(log.With().Str("session_id", id).Logger()),
		),
	}
	s.items[id] = &sessionEntry{session: sess, lastUsed: s.now()}
	return sess
}

func (s *Sessions) lookup(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok {
		return nil
	}
	entry.lastUsed = s.now()
	return entry.session
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// EvictIdle drops sessions unused for longer than the idle TTL and closes
// their carts. The persisted token is kept, so the browser can come back.
func (s *Sessions) EvictIdle() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var evicted []*Session
	for id, entry := range s.items {
		if entry.lastUsed.Before(cutoff) {
			evicted = append(evicted, entry.session)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.Cart.Close()
	}
	if len(evicted) > 0 {
		log.Debug().Int("evicted", len(evicted)).Msg("Evicted idle sessions")
	}
	return len(evicted)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *Sessions) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}

// Close releases every cart store and waits for their reconciliations.
func (s *Sessions) Close() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, entry := range items {
		entry.session.Cart.Close()
	}
}

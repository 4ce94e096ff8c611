package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/rs/zerolog/log"
)

// TokenStore persists the bearer token of a browser session between requests.
// Load returns an empty token when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context, sessionID string) (string, error)
	Save(ctx context.Context, sessionID, token string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type Event struct {
	Authenticated bool
	Role          domain.Role
}

type Session struct {
	id     string
	tokens TokenStore
	now    func() time.Time

	mu     sync.RWMutex
	token  string
	claims *Claims

	listenersMu sync.Mutex
	listeners   map[int]func(Event)
	nextID      int
}

func NewSession(id string, tokens TokenStore) *Session {
	return &Session{
		id:        id,
		tokens:    tokens,
		now:       time.Now,
		listeners: make(map[int]func(Event)),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Restore picks up a token persisted by an earlier request. A stored token that
// no longer decodes or has expired is deleted.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.tokens.Load(ctx, s.id)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return nil
	}

	claims, err := DecodeToken(token, s.now())
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.id).Msg("Dropping stored token")
		if delErr := s.tokens.Delete(ctx, s.id); delErr != nil {
			return fmt.Errorf("delete token: %w", delErr)
		}
		return nil
	}

	s.mu.Lock()
	s.token, s.claims = token, claims
	s.mu.Unlock()
	return nil
}

// Login replaces the session's identity. Logging in as a different user ends
// the previous session first, so its cart does not carry over.
func (s *Session) Login(ctx context.Context, token string) error {
	now := s.now()
	claims, err := DecodeToken(token, now)
	if err != nil {
		return err
	}

	s.mu.RLock()
	previous := s.claims
	s.mu.RUnlock()
	if previous != nil && previous.Username != claims.Username {
		if err := s.Logout(ctx); err != nil {
			return err
		}
	}

	if err := s.tokens.Save(ctx, s.id, token, claims.lifetime(now)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	s.mu.Lock()
	s.token, s.claims = token, claims
	s.mu.Unlock()

	log.Info().Str("session_id", s.id).Str("username", claims.Username).Str("role", string(claims.Role)).Msg("Session authenticated")
	s.notify(Event{Authenticated: true, Role: claims.Role})
	return nil
}

// Logout forgets the token and tells every subscriber the session has ended.
// Subscribers are notified even if the token could not be deleted.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.claims = "", nil
	s.mu.Unlock()

	err := s.tokens.Delete(ctx, s.id)
	s.notify(Event{Authenticated: false})
	log.Info().Str("session_id", s.id).Msg("Session ended")

	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims != nil && !s.claims.expired(s.now())
}

func (s *Session) Role() domain.Role {
	if !s.IsAuthenticated() {
		return domain.RoleNone
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims.Role
}

// Token returns the bearer token, or "" when the session is not authenticated.
func (s *Session) Token() string {
	if !s.IsAuthenticated() {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Claims() (Claims, bool) {
	if !s.IsAuthenticated() {
		return Claims{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.claims, true
}

// Subscribe registers fn for every authentication change.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Session) OnSessionEnded(fn func()) (cancel func()) {
	return s.Subscribe(func(e Event) {
		if !e.Authenticated {
			fn()
		}
	})
}

func (s *Session) notify(e Event) {
	s.listenersMu.Lock()
	listeners := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (m *MemoryTokenStore) Load(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[sessionID], nil
}

func (m *MemoryTokenStore) Save(_ context.Context, sessionID, token string, _ time.Duration) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sessionID] = token
	return nil
}

func (m *MemoryTokenStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sessionID)
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)

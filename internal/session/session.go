package session

import (
	"encoding/json"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
)

// State is the lifecycle of the current session. Auth failure handlers are
// no-ops while the state is LoggingOut, which is set before storage is
// cleared so an in-flight 401 cannot re-trigger a redirect.
type State int

const (
	StateActive State = iota
	StateLoggingOut
	StateExpired
)

// Session owns the stored credential pair and the session state. It is
// process-wide; every component reads the principal through it.
type Session struct {
	mu    sync.Mutex
	store Store
	state State
}

func New(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// BeginLogout flips the state before any storage mutation.
func (s *Session) BeginLogout() {
	s.setState(StateLoggingOut)
}

func (s *Session) MarkExpired() {
	s.setState(StateExpired)
}

func (s *Session) Token() string {
	token, _ := s.store.Get(KeyToken)
	return token
}

// Principal decodes the stored principal payload, nil if absent or corrupt.
func (s *Session) Principal() *model.Staff {
	raw, ok := s.store.Get(KeyPrincipal)
	if !ok || raw == "" {
		return nil
	}
	var staff model.Staff
	if err := json.Unmarshal([]byte(raw), &staff); err != nil {
		return nil
	}
	return &staff
}

// SetCredentials stores the token and principal pair after a successful login
// or profile update.
func (s *Session) SetCredentials(token string, principal *model.Staff) error {
	raw, err := json.Marshal(principal)
	if err != nil {
		return errors.NewAuth("failed to encode principal", err)
	}
	if err := s.store.Set(KeyToken, token); err != nil {
		return err
	}
	if err := s.store.Set(KeyPrincipal, string(raw)); err != nil {
		return err
	}
	s.setState(StateActive)
	return nil
}

// UpdatePrincipal replaces only the stored principal payload.
func (s *Session) UpdatePrincipal(principal *model.Staff) error {
	raw, err := json.Marshal(principal)
	if err != nil {
		return errors.NewAuth("failed to encode principal", err)
	}
	return s.store.Set(KeyPrincipal, string(raw))
}

// Clear removes both stored keys.
func (s *Session) Clear() {
	_ = s.store.Delete(KeyToken)
	_ = s.store.Delete(KeyPrincipal)
}

// TokenExpired inspects the stored token's exp claim without verifying the
// signature. Opaque tokens report false; expiry is then only learned from a
// 401 response, as before.
func (s *Session) TokenExpired() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(nowFunc())
}

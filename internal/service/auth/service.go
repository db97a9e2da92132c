package auth

import (
	"context"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
)

// Service handles the login flow: credential exchange, principal fetch,
// storage, role-based landing.
type Service struct {
	api     *apiclient.Client
	session *session.Session
	nav     session.Navigator
	logger  *logger.Logger
}

func NewService(api *apiclient.Client, sess *session.Session, nav session.Navigator, log *logger.Logger) *Service {
	return &Service{api: api, session: sess, nav: nav, logger: log}
}

// Login authenticates and, on success, stores the credential pair and
// navigates to the role-appropriate dashboard. Nothing is stored until both
// the token exchange and the principal fetch succeed.
func (s *Service) Login(ctx context.Context, username, password string) (*model.Staff, error) {
	if username == "" || password == "" {
		return nil, errors.NewValidation("Per favore, inserisci nome utente e password.")
	}

	tokenResp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	principal, err := s.api.Me(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := s.session.SetCredentials(tokenResp.AccessToken, principal); err != nil {
		return nil, err
	}

	s.logger.Info("login successful", "username", username, "role", principal.Role)
	s.nav.Goto(session.LandingPage(principal.Role))
	return principal, nil
}

// Resume routes an already-authenticated principal straight to its dashboard,
// the login-page shortcut for a stored valid session.
func (s *Service) Resume() bool {
	if s.session.Token() == "" {
		return false
	}
	principal := s.session.Principal()
	if principal == nil {
		s.session.Clear()
		return false
	}
	s.nav.Goto(session.LandingPage(principal.Role))
	return true
}

package session

import (
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Page identifies a navigable surface of the client.
type Page string

const (
	PageLogin          Page = "staff-login"
	PageAdminDashboard Page = "admin-dashboard"
	PageStaffDashboard Page = "staff-dashboard"
	PageInventory      Page = "inventory"
)

// Navigator performs page transitions. The console shell switches screens;
// tests record the target.
type Navigator interface {
	Goto(page Page)
}

// LandingPage is the dashboard a principal of the given role belongs on.
func LandingPage(role model.Role) Page {
	if role == model.RoleAdmin {
		return PageAdminDashboard
	}
	return PageStaffDashboard
}

// Guard is the page-entry check that a valid credential/principal pair exists
// and matches the page's required role.
type Guard struct {
	session *Session
	nav     Navigator
	logger  *logger.Logger
}

func NewGuard(session *Session, nav Navigator, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Guard{session: session, nav: nav, logger: log}
}

// Validate checks the stored credential pair against the page's required
// role. Missing or undecodable state redirects to login; a valid principal of
// the wrong role redirects to its own dashboard instead.
func (g *Guard) Validate(required model.Role) (*model.Staff, error) {
	token := g.session.Token()
	if token == "" {
		g.logger.Debug("no credential found, redirecting to login")
		g.session.Clear()
		g.nav.Goto(PageLogin)
		return nil, errors.NewAuth("not authenticated", nil)
	}

	principal := g.session.Principal()
	if principal == nil {
		g.logger.Debug("stored principal missing or undecodable")
		g.session.Clear()
		g.nav.Goto(PageLogin)
		return nil, errors.NewAuth("invalid stored principal", nil)
	}

	if g.session.TokenExpired() {
		g.logger.Info("stored token expired")
		g.session.MarkExpired()
		g.session.Clear()
		g.nav.Goto(PageLogin)
		return nil, errors.NewAuth("session expired", nil)
	}

	if required != "" && !roleAllowed(principal.Role, required) {
		// Authenticated but in the wrong section: send to the
		// role-appropriate dashboard, not to login.
		g.nav.Goto(LandingPage(principal.Role))
		return nil, errors.NewAuth("wrong section for role", nil)
	}

	return principal, nil
}

// Logout clears the stored credential pair and navigates to login. The state
// flip happens first so concurrent 401 handlers stand down.
func (g *Guard) Logout() {
	g.session.BeginLogout()
	g.session.Clear()
	g.nav.Goto(PageLogin)
}

// roleAllowed: admin pages require admin exactly; staff pages accept any
// non-admin clinical role.
func roleAllowed(actual, required model.Role) bool {
	if required == model.RoleAdmin {
		return actual == model.RoleAdmin
	}
	return actual != model.RoleAdmin
}

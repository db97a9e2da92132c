package controller

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/service/staff"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

type staffBackend struct {
	mu      sync.Mutex
	members []gin.H
	lists   int
}

func (b *staffBackend) router() *gin.Engine {
	router := gin.New()
	router.GET("/staff/", func(c *gin.Context) {
		b.mu.Lock()
		b.lists++
		out := make([]gin.H, len(b.members))
		copy(out, b.members)
		b.mu.Unlock()
		c.JSON(http.StatusOK, out)
	})
	router.DELETE("/staff/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.members[:0]
		for _, m := range b.members {
			if strconv.Itoa(m["id"].(int)) != c.Param("id") {
				kept = append(kept, m)
			}
		}
		b.members = kept
		c.Status(http.StatusNoContent)
	})
	return router
}

func (b *staffBackend) listCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

func newStaffFixture(t *testing.T, backend *staffBackend) (*StaffController, *renderRecorder, *notifier.Recorder, *session.Session) {
	t.Helper()
	api, notifs := newTestAPI(t, backend.router())

	sess := session.New(session.NewMemStore())
	require.NoError(t, sess.SetCredentials("tok", &model.Staff{ID: 99, Role: model.RoleAdmin}))

	svc := staff.NewService(api, sess, testValidator(), testLogger())
	res := cache.NewResource[model.Staff](testResourceConfig("staff", 10))
	renders := &renderRecorder{}
	return NewStaffController(svc, res, notifs, renders.sink), renders, notifs, sess
}

func staffMembers() []gin.H {
	return []gin.H{
		{"id": 1, "username": "arossi", "first_name": "Anna", "last_name": "Rossi",
			"role": "admin", "email": "anna@clinic.example", "status": "active"},
		{"id": 2, "username": "lverdi", "first_name": "Luca", "last_name": "Verdi",
			"role": "doctor", "email": "luca@clinic.example", "status": "inactive"},
	}
}

func TestStaffLoadRendersRows(t *testing.T) {
	backend := &staffBackend{members: staffMembers()}
	ctrl, renders, _, _ := newStaffFixture(t, backend)

	ctrl.Load(context.Background())
	renders.waitCount(t, 2)

	body := renders.last().Body
	assert.Equal(t, SectionStaff, renders.last().Section)
	assert.Contains(t, body, "Amministratore")
	assert.Contains(t, body, "Dottore")
	assert.Contains(t, body, "Attivo")
	assert.Contains(t, body, "Inattivo")
	assert.Equal(t, 2, ctrl.Count())
}

func TestStaffFiltersApplyToCacheWithoutRefetch(t *testing.T) {
	backend := &staffBackend{members: staffMembers()}
	ctrl, renders, _, _ := newStaffFixture(t, backend)

	ctrl.Load(context.Background())
	renders.waitCount(t, 2)

	ctrl.SetFilters(context.Background(), model.StaffFilters{Role: model.RoleDoctor})
	renders.waitCount(t, 3)

	body := renders.last().Body
	assert.Contains(t, body, "Verdi")
	assert.NotContains(t, body, "Rossi")
	assert.Equal(t, 1, backend.listCount())
}

func TestStaffDeleteRendersBeforeRefreshLands(t *testing.T) {
	backend := &staffBackend{members: staffMembers()}
	ctrl, renders, notifs, _ := newStaffFixture(t, backend)

	ctrl.Load(context.Background())
	renders.waitCount(t, 2)

	require.NoError(t, ctrl.Delete(context.Background(), 2))

	optimistic := renders.at(2)
	assert.NotContains(t, optimistic.Body, "Verdi")
	assert.Contains(t, optimistic.Body, "Rossi")

	last, ok := notifs.Last()
	require.True(t, ok)
	assert.Equal(t, "Membro staff eliminato con successo", last.Message)

	renders.waitCount(t, 4)
	assert.Equal(t, 2, backend.listCount())
}

func TestStaffDeleteSelfBlocked(t *testing.T) {
	backend := &staffBackend{members: staffMembers()}
	ctrl, renders, notifs, _ := newStaffFixture(t, backend)

	ctrl.Load(context.Background())
	renders.waitCount(t, 2)

	// Principal ID is 99; deleting it is refused client-side.
	err := ctrl.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, 2, ctrl.Count())

	last, _ := notifs.Last()
	assert.Equal(t, "Non puoi eliminare il tuo account", last.Message)
}

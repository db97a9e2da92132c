package console_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/controller"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/nav"
	"github.com/jwalitptl/clinic-console/internal/service/auth"
	"github.com/jwalitptl/clinic-console/internal/service/inventory"
	"github.com/jwalitptl/clinic-console/internal/service/patient"
	"github.com/jwalitptl/clinic-console/internal/service/staff"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

const testToken = "tok-e2e"

func init() {
	gin.SetMode(gin.TestMode)
}

// clinicBackend is an in-process stand-in for the clinic API, enough surface
// for a full console session.
type clinicBackend struct {
	mu      sync.Mutex
	reports []gin.H
}

func newClinicBackend() *clinicBackend {
	return &clinicBackend{
		reports: []gin.H{
			{"id": 1, "patient_id": "PAT-001", "first_name": "Giulia", "last_name": "Neri",
				"status": "active", "created_at": "2024-03-05T14:30:00Z"},
			{"id": 2, "patient_id": "PAT-002", "first_name": "Paolo", "last_name": "Gallo",
				"status": "active", "created_at": "2024-03-06T09:00:00Z"},
		},
	}
}

func (b *clinicBackend) router() *gin.Engine {
	router := gin.New()

	router.POST("/auth/login", func(c *gin.Context) {
		if c.PostForm("username") != "admin" || c.PostForm("password") != "admin123" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Nome utente o password non corretti."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": testToken, "token_type": "bearer"})
	})

	authed := router.Group("/", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+testToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		}
	})

	authed.GET("/staff/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id": 1, "username": "admin", "first_name": "Anna", "last_name": "Bianchi",
			"role": "admin", "status": "active",
		})
	})
	authed.GET("/staff/", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": 1, "username": "admin", "first_name": "Anna", "last_name": "Bianchi",
				"role": "admin", "status": "active"},
		})
	})

	authed.GET("/patients", func(c *gin.Context) {
		b.mu.Lock()
		out := make([]gin.H, len(b.reports))
		copy(out, b.reports)
		b.mu.Unlock()
		c.JSON(http.StatusOK, out)
	})
	authed.DELETE("/patients/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.reports[:0]
		for _, r := range b.reports {
			if r["patient_id"] != c.Param("id") {
				kept = append(kept, r)
			}
		}
		b.reports = kept
		c.Status(http.StatusNoContent)
	})

	authed.GET("/inventory/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"total_items": 2, "low_stock_count": 1, "total_value": 86.0, "categories_count": 1,
		})
	})
	authed.GET("/inventory/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 4, "name": "Medicazione", "description": ""}})
	})
	authed.GET("/inventory/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": 1, "code": "GRZ-01", "name": "Garza sterile", "category_id": 4,
				"unit": "pz", "unit_price": 2.5, "current_stock": 4, "min_stock": 5},
			{"id": 2, "code": "SRG-02", "name": "Siringa 5ml", "category_id": 4,
				"unit": "pz", "unit_price": 0.8, "current_stock": 95, "min_stock": 20},
		})
	})
	authed.GET("/inventory/transactions", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": 1, "item_id": 2, "transaction_type": "out", "quantity": 5,
				"previous_stock": 100, "new_stock": 95, "staff_id": 1,
				"transaction_date": "2024-03-06T09:00:00Z"},
		})
	})
	authed.POST("/inventory/transactions", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 2})
	})

	return router
}

type pageRecorder struct {
	mu    sync.Mutex
	pages []session.Page
}

func (p *pageRecorder) Goto(page session.Page) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, page)
}

func (p *pageRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

func (p *pageRecorder) last() session.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pages) == 0 {
		return ""
	}
	return p.pages[len(p.pages)-1]
}

type renderRecorder struct {
	mu      sync.Mutex
	renders []controller.Render
}

func (r *renderRecorder) sink(render controller.Render) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, render)
}

// lastFor returns the most recent render of a section.
func (r *renderRecorder) lastFor(section string) (controller.Render, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.renders) - 1; i >= 0; i-- {
		if r.renders[i].Section == section {
			return r.renders[i], true
		}
	}
	return controller.Render{}, false
}

func (r *renderRecorder) waitFor(t *testing.T, section string, contains string) controller.Render {
	t.Helper()
	var out controller.Render
	require.Eventually(t, func() bool {
		render, ok := r.lastFor(section)
		if !ok {
			return false
		}
		out = render
		return contains == "" || strings.Contains(render.Body, contains)
	}, 2*time.Second, 10*time.Millisecond)
	return out
}

// console is the fully wired client under test.
type console struct {
	session      *session.Session
	guard        *session.Guard
	nav          *pageRecorder
	notifs       *notifier.Recorder
	renders      *renderRecorder
	sections     *nav.Switch
	auth         *auth.Service
	reports      *controller.ReportsController
	staff        *controller.StaffController
	items        *controller.ItemsController
	categories   *controller.CategoriesController
	transactions *controller.TransactionsController
	stats        *controller.StatsController
}

func newConsole(t *testing.T, backend *clinicBackend) *console {
	t.Helper()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	log := logger.NewLogger(&logger.Config{Level: logger.FatalLevel, Output: io.Discard})
	sess := session.New(session.NewMemStore())
	pages := &pageRecorder{}
	notifs := notifier.NewRecorder()
	renders := &renderRecorder{}

	api := apiclient.New(server.URL, 5*time.Second, sess, pages, notifs, log)
	validate := validator.New(validator.WithRequiredStructEnabled())

	authSvc := auth.NewService(api, sess, pages, log)
	patientSvc := patient.NewService(api, log)
	staffSvc := staff.NewService(api, sess, validate, log)
	inventorySvc := inventory.NewService(api, validate, log)

	cfg := func(name string) cache.Config {
		return cache.Config{Name: name, PageSize: 10, FetchTimeout: 5 * time.Second, Logger: log}
	}

	reportsCtrl := controller.NewReportsController(patientSvc,
		cache.NewResource[model.PatientReport](cfg("reports")), notifs, renders.sink)
	staffCtrl := controller.NewStaffController(staffSvc,
		cache.NewResource[model.Staff](cfg("staff")), notifs, renders.sink)
	itemsCtrl := controller.NewItemsController(inventorySvc,
		cache.NewResource[model.Item](cfg("items")), notifs, renders.sink)
	categoriesCtrl := controller.NewCategoriesController(inventorySvc,
		cache.NewResource[model.Category](cfg("categories")), itemsCtrl.Items, notifs, renders.sink)
	transactionsCtrl := controller.NewTransactionsController(inventorySvc,
		cache.NewResource[model.StockTransaction](cfg("transactions")), itemsCtrl.Items, notifs, renders.sink)
	statsCtrl := controller.NewStatsController(inventorySvc, notifs, renders.sink)

	sections := nav.NewSwitch(context.Background(), log)
	sections.Register(nav.Section{ID: controller.SectionReports, Load: reportsCtrl.Load})
	sections.Register(nav.Section{ID: controller.SectionStaff, Load: staffCtrl.Load})
	sections.Register(nav.Section{ID: controller.SectionItems, Load: itemsCtrl.Load})
	sections.Register(nav.Section{ID: controller.SectionCategories, Load: categoriesCtrl.Load})
	sections.Register(nav.Section{ID: controller.SectionTransactions, Load: transactionsCtrl.Load})
	sections.Register(nav.Section{ID: controller.SectionInventoryStats, Load: statsCtrl.Load})

	return &console{
		session:      sess,
		guard:        session.NewGuard(sess, pages, log),
		nav:          pages,
		notifs:       notifs,
		renders:      renders,
		sections:     sections,
		auth:         authSvc,
		reports:      reportsCtrl,
		staff:        staffCtrl,
		items:        itemsCtrl,
		categories:   categoriesCtrl,
		transactions: transactionsCtrl,
		stats:        statsCtrl,
	}
}

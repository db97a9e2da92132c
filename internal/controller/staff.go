package controller

import (
	"context"
	"strconv"
	"sync"

	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/service/staff"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// SectionStaff is the staff table's section id.
const SectionStaff = "staff-section"

var staffTable = view.Table{
	Columns:      []string{"ID", "Nome", "Cognome", "Ruolo", "Email", "Stato", "Azioni"},
	EmptyMessage: "Nessun membro staff disponibile",
}

// StaffController owns the staff cache. The backend exposes no staff query
// parameters, so search, role and status narrow the cached list at render
// time without a refetch.
type StaffController struct {
	svc      *staff.Service
	res      *cache.Resource[model.Staff]
	notifier notifier.Notifier
	sink     RenderSink

	mu      sync.Mutex
	filters model.StaffFilters
}

func NewStaffController(svc *staff.Service, res *cache.Resource[model.Staff], notif notifier.Notifier, sink RenderSink) *StaffController {
	return &StaffController{
		svc:      svc,
		res:      res,
		notifier: notif,
		sink:     sink,
	}
}

func (c *StaffController) Load(ctx context.Context) {
	c.res.EnsureLoaded(ctx, "", func(ctx context.Context) ([]model.Staff, error) {
		return c.svc.List(ctx)
	}, c.render)
}

// SetFilters re-renders the cached list with the new filters applied.
func (c *StaffController) SetFilters(ctx context.Context, f model.StaffFilters) {
	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
	c.Load(ctx)
}

// Create submits a new staff member, then discards and refetches.
func (c *StaffController) Create(ctx context.Context, req *model.CreateStaffRequest) error {
	if _, err := c.svc.Create(ctx, req); err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante la creazione del membro staff")
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Membro staff creato con successo!")
	return nil
}

func (c *StaffController) Update(ctx context.Context, id int64, req *model.UpdateStaffRequest) error {
	if _, err := c.svc.Update(ctx, id, req); err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante l'aggiornamento del membro staff")
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Membro staff aggiornato con successo!")
	return nil
}

// Delete splices the deleted member out of the cache for an immediate
// render, then invalidates so the next render is authoritative.
func (c *StaffController) Delete(ctx context.Context, id int64) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		c.notifier.Notify(notifier.LevelError, err.Error())
		return err
	}

	c.res.Remove(func(s model.Staff) bool { return s.ID == id })
	c.render(c.res.Snapshot())
	c.res.Refresh(ctx, "", func(ctx context.Context) ([]model.Staff, error) {
		return c.svc.List(ctx)
	}, c.render)

	c.notifier.Notify(notifier.LevelSuccess, "Membro staff eliminato con successo")
	return nil
}

// Count is the cached staff count shown on the admin dashboard counter.
func (c *StaffController) Count() int {
	return len(c.res.Get())
}

func (c *StaffController) render(snap cache.Snapshot[model.Staff]) {
	c.mu.Lock()
	filters := c.filters
	c.mu.Unlock()

	if snap.Err == nil && snap.Data != nil {
		snap.Data = staff.Filter(snap.Data, filters)
	}
	c.sink(clientPagedRender(SectionStaff, staffTable, snap, staffRow))
}

func staffRow(s model.Staff) view.Row {
	return view.Row{
		{Text: strconv.FormatInt(s.ID, 10)},
		{Text: view.OrPlaceholder(s.FirstName)},
		{Text: view.OrPlaceholder(s.LastName)},
		{Text: view.FormatRole(s.Role)},
		{Text: view.OrPlaceholder(s.Email)},
		{Text: view.FormatStatus(s.Status), Class: "status-badge " + s.Status},
		{Text: "Visualizza | Modifica | Elimina", Class: "table-actions"},
	}
}

package controller

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/service/patient"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// SectionReports is the patient-report table's section id.
const SectionReports = "reports-section"

var reportsTable = view.Table{
	Columns:      []string{"ID", "Paziente", "ID Paziente", "Data", "Stato", "Azioni"},
	EmptyMessage: "Nessun report disponibile",
}

// ReportsController owns the patient-report cache and its table. Search and
// date filters re-query the server; page changes slice the cached set.
type ReportsController struct {
	svc      *patient.Service
	res      *cache.Resource[model.PatientReport]
	notifier notifier.Notifier
	sink     RenderSink
	debounce *Debouncer

	mu      sync.Mutex
	filters model.PatientFilters
}

func NewReportsController(svc *patient.Service, res *cache.Resource[model.PatientReport], notif notifier.Notifier, sink RenderSink) *ReportsController {
	return &ReportsController{
		svc:      svc,
		res:      res,
		notifier: notif,
		sink:     sink,
		debounce: NewDebouncer(searchDebounce),
	}
}

// Load renders from cache when filters are unchanged, otherwise fetches.
func (c *ReportsController) Load(ctx context.Context) {
	filters := c.currentFilters()
	c.res.EnsureLoaded(ctx, c.filterSig(filters), func(ctx context.Context) ([]model.PatientReport, error) {
		return c.svc.List(ctx, filters)
	}, c.render)
}

// Search updates the search filter after the debounce delay.
func (c *ReportsController) Search(ctx context.Context, term string) {
	c.debounce.Trigger(func() {
		c.mu.Lock()
		c.filters.Search = term
		c.mu.Unlock()
		c.res.Invalidate()
		c.Load(ctx)
	})
}

// SetDate applies the specific-date filter immediately.
func (c *ReportsController) SetDate(ctx context.Context, date string) {
	c.mu.Lock()
	c.filters.SpecificDate = date
	c.mu.Unlock()
	c.res.Invalidate()
	c.Load(ctx)
}

func (c *ReportsController) NextPage(ctx context.Context) {
	if c.res.NextPage(len(c.res.Get())) {
		c.Load(ctx)
	}
}

func (c *ReportsController) PrevPage(ctx context.Context) {
	if c.res.PrevPage() {
		c.Load(ctx)
	}
}

// Delete removes the report, splices it out of the cache for an immediate
// render, then invalidates so the next render reflects server state.
func (c *ReportsController) Delete(ctx context.Context, patientID string) error {
	if patientID == "" {
		c.notifier.Notify(notifier.LevelError, "ID paziente non valido")
		return nil
	}
	if err := c.svc.Delete(ctx, patientID); err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante l'eliminazione del report")
		return err
	}

	c.res.Remove(func(r model.PatientReport) bool { return r.PatientID == patientID })
	c.render(c.res.Snapshot())
	filters := c.currentFilters()
	c.res.Refresh(ctx, c.filterSig(filters), func(ctx context.Context) ([]model.PatientReport, error) {
		return c.svc.List(ctx, filters)
	}, c.render)

	c.notifier.Notify(notifier.LevelSuccess, "Report eliminato con successo")
	return nil
}

// Count is the cached report count shown on the dashboard counters.
func (c *ReportsController) Count() int {
	return len(c.res.Get())
}

func (c *ReportsController) render(snap cache.Snapshot[model.PatientReport]) {
	c.sink(clientPagedRender(SectionReports, reportsTable, snap, reportRow))
}

func (c *ReportsController) currentFilters() model.PatientFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

func (c *ReportsController) filterSig(f model.PatientFilters) string {
	return fmt.Sprintf("search=%s|date=%s", f.Search, f.SpecificDate)
}

func reportRow(r model.PatientReport) view.Row {
	status := r.Status
	if status == "" {
		status = string(model.ReportStatusActive)
	}
	return view.Row{
		{Text: strconv.FormatInt(r.ID, 10)},
		{Text: r.FullName(), Class: "patient-name"},
		{Text: view.OrPlaceholder(r.PatientID)},
		{Text: view.FormatDate(r.CreatedAt)},
		{Text: view.FormatStatus(status), Class: "status-badge " + status},
		{Text: "Visualizza | Modifica | Elimina", Class: "table-actions"},
	}
}

package controller

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/service/inventory"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// SectionItems is the inventory items tab's section id.
const SectionItems = "items-tab"

var itemsTable = view.Table{
	Columns:      []string{"Codice", "Nome", "Categoria", "Giacenza", "Scorta Min.", "Prezzo", "Valore", "Azioni"},
	EmptyMessage: "Nessun prodotto trovato",
}

// ItemsController owns the items cache. Items are paginated server-side via
// skip/limit, so the page participates in the filter signature and a page
// change re-queries.
type ItemsController struct {
	svc      *inventory.Service
	res      *cache.Resource[model.Item]
	notifier notifier.Notifier
	sink     RenderSink

	mu      sync.Mutex
	filters model.ItemFilters
	page    int
}

func NewItemsController(svc *inventory.Service, res *cache.Resource[model.Item], notif notifier.Notifier, sink RenderSink) *ItemsController {
	return &ItemsController{
		svc:      svc,
		res:      res,
		notifier: notif,
		sink:     sink,
		page:     1,
	}
}

func (c *ItemsController) Load(ctx context.Context) {
	filters, page := c.window()
	c.res.EnsureLoaded(ctx, c.filterSig(filters, page), func(ctx context.Context) ([]model.Item, error) {
		return c.svc.Items(ctx, filters)
	}, c.render)
}

// SetFilters applies new filters and resets to the first page.
func (c *ItemsController) SetFilters(ctx context.Context, f model.ItemFilters) {
	c.mu.Lock()
	c.filters = f
	c.page = 1
	c.mu.Unlock()
	c.Load(ctx)
}

// NextPage advances only when the current page came back full.
func (c *ItemsController) NextPage(ctx context.Context) {
	if len(c.res.Get()) < c.res.PageSize() {
		return
	}
	c.mu.Lock()
	c.page++
	c.mu.Unlock()
	c.Load(ctx)
}

func (c *ItemsController) PrevPage(ctx context.Context) {
	c.mu.Lock()
	if c.page <= 1 {
		c.mu.Unlock()
		return
	}
	c.page--
	c.mu.Unlock()
	c.Load(ctx)
}

func (c *ItemsController) Create(ctx context.Context, req *model.UpsertItemRequest) error {
	if _, err := c.svc.CreateItem(ctx, req); err != nil {
		c.notifier.Notify(notifier.LevelError, fmt.Sprintf("Errore durante il salvataggio del prodotto: %v", err))
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Prodotto creato con successo")
	return nil
}

func (c *ItemsController) Update(ctx context.Context, id int64, req *model.UpsertItemRequest) error {
	if _, err := c.svc.UpdateItem(ctx, id, req); err != nil {
		c.notifier.Notify(notifier.LevelError, fmt.Sprintf("Errore durante il salvataggio del prodotto: %v", err))
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Prodotto aggiornato con successo")
	return nil
}

func (c *ItemsController) Delete(ctx context.Context, id int64) error {
	if err := c.svc.DeleteItem(ctx, id); err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante l'eliminazione del prodotto")
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Prodotto eliminato con successo")
	return nil
}

// Items exposes the cached page for collaborators: the category delete guard
// and the transaction product search.
func (c *ItemsController) Items() []model.Item {
	return c.res.Get()
}

func (c *ItemsController) render(snap cache.Snapshot[model.Item]) {
	_, page := c.window()
	c.sink(Render{
		Section:   SectionItems,
		Body:      view.Render(itemsTable, snap, itemRow),
		PageLabel: fmt.Sprintf("Pagina %d", page),
		HasPrev:   page > 1,
		HasNext:   len(snap.Data) == snap.PageSize,
	})
}

func (c *ItemsController) window() (model.ItemFilters, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filters
	f.Skip = (c.page - 1) * c.res.PageSize()
	f.Limit = c.res.PageSize()
	return f, c.page
}

func (c *ItemsController) filterSig(f model.ItemFilters, page int) string {
	return fmt.Sprintf("search=%s|cat=%d|low=%t|page=%d", f.Search, f.CategoryID, f.LowStock, page)
}

func itemRow(i model.Item) view.Row {
	categoryName := view.Placeholder
	if i.Category != nil {
		categoryName = i.Category.Name
	}
	stockClass := ""
	if i.LowStock() {
		stockClass = "text-danger"
	}
	return view.Row{
		{Text: i.Code},
		{Text: i.Name},
		{Text: categoryName},
		{Text: strconv.Itoa(i.CurrentStock), Class: stockClass},
		{Text: strconv.Itoa(i.MinStock)},
		{Text: view.FormatCurrency(i.UnitPrice)},
		{Text: view.FormatCurrency(i.TotalValue())},
		{Text: "Visualizza | Modifica | Elimina", Class: "table-actions"},
	}
}

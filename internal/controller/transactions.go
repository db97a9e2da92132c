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

// SectionTransactions is the stock movements tab's section id.
const SectionTransactions = "transactions-tab"

var transactionsTable = view.Table{
	Columns:      []string{"Data", "Prodotto", "Tipo", "Quantità", "Giacenza Prec.", "Giacenza Nuova", "Staff", "Note"},
	EmptyMessage: "Nessun movimento trovato",
}

// TransactionsController owns the stock-transaction cache. The ledger is
// read-only except for appending new movements; server-side paginated.
type TransactionsController struct {
	svc           *inventory.Service
	res           *cache.Resource[model.StockTransaction]
	itemsProvider func() []model.Item
	notifier      notifier.Notifier
	sink          RenderSink

	mu      sync.Mutex
	filters model.TransactionFilters
	page    int
}

func NewTransactionsController(svc *inventory.Service, res *cache.Resource[model.StockTransaction], itemsProvider func() []model.Item, notif notifier.Notifier, sink RenderSink) *TransactionsController {
	return &TransactionsController{
		svc:           svc,
		res:           res,
		itemsProvider: itemsProvider,
		notifier:      notif,
		sink:          sink,
		page:          1,
	}
}

func (c *TransactionsController) Load(ctx context.Context) {
	filters, page := c.window()
	c.res.EnsureLoaded(ctx, c.filterSig(filters, page), func(ctx context.Context) ([]model.StockTransaction, error) {
		return c.svc.Transactions(ctx, filters)
	}, c.render)
}

// ApplyFilters resolves the product search against the items cache and
// applies the type filter, resetting to the first page.
func (c *TransactionsController) ApplyFilters(ctx context.Context, productSearch string, txType model.TransactionType) {
	var itemID int64
	if productSearch != "" {
		if item, ok := inventory.MatchItem(c.itemsProvider(), productSearch); ok {
			itemID = item.ID
		}
	}

	c.mu.Lock()
	c.filters = model.TransactionFilters{ItemID: itemID, Type: txType}
	c.page = 1
	c.mu.Unlock()
	c.Load(ctx)
}

func (c *TransactionsController) NextPage(ctx context.Context) {
	if len(c.res.Get()) < c.res.PageSize() {
		return
	}
	c.mu.Lock()
	c.page++
	c.mu.Unlock()
	c.Load(ctx)
}

func (c *TransactionsController) PrevPage(ctx context.Context) {
	c.mu.Lock()
	if c.page <= 1 {
		c.mu.Unlock()
		return
	}
	c.page--
	c.mu.Unlock()
	c.Load(ctx)
}

// Record appends a stock movement; the ledger, items and stats all go stale,
// so their caches are discarded.
func (c *TransactionsController) Record(ctx context.Context, req *model.CreateTransactionRequest, items *ItemsController) error {
	if _, err := c.svc.CreateTransaction(ctx, req); err != nil {
		c.notifier.Notify(notifier.LevelError, fmt.Sprintf("Errore durante la registrazione del movimento: %v", err))
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	if items != nil {
		items.res.Invalidate()
		items.Load(ctx)
	}
	c.notifier.Notify(notifier.LevelSuccess, "Movimento registrato con successo")
	return nil
}

func (c *TransactionsController) render(snap cache.Snapshot[model.StockTransaction]) {
	_, page := c.window()
	c.sink(Render{
		Section:   SectionTransactions,
		Body:      view.Render(transactionsTable, snap, transactionRow),
		PageLabel: fmt.Sprintf("Pagina %d", page),
		HasPrev:   page > 1,
		HasNext:   len(snap.Data) == snap.PageSize,
	})
}

func (c *TransactionsController) window() (model.TransactionFilters, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filters
	f.Skip = (c.page - 1) * c.res.PageSize()
	f.Limit = c.res.PageSize()
	return f, c.page
}

func (c *TransactionsController) filterSig(f model.TransactionFilters, page int) string {
	return fmt.Sprintf("item=%d|type=%s|page=%d", f.ItemID, f.Type, page)
}

func transactionRow(t model.StockTransaction) view.Row {
	itemLabel := view.Placeholder
	if t.Item != nil {
		itemLabel = t.Item.Code + " - " + t.Item.Name
	}

	typeClass := "text-warning"
	switch t.TransactionType {
	case model.TransactionIn:
		typeClass = "text-success"
	case model.TransactionOut:
		typeClass = "text-danger"
	}

	return view.Row{
		{Text: view.FormatDate(t.TransactionDate)},
		{Text: itemLabel},
		{Text: view.FormatTransactionType(t.TransactionType), Class: typeClass},
		{Text: view.QuantityPrefix(t.TransactionType) + strconv.Itoa(t.Quantity)},
		{Text: strconv.Itoa(t.PreviousStock)},
		{Text: strconv.Itoa(t.NewStock)},
		{Text: strconv.FormatInt(t.StaffID, 10)},
		{Text: t.Notes},
	}
}

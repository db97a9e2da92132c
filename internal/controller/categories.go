package controller

import (
	"context"
	"strconv"

	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/service/inventory"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// SectionCategories is the inventory categories tab's section id.
const SectionCategories = "categories-tab"

var categoriesTable = view.Table{
	Columns:      []string{"ID", "Nome", "Descrizione", "Prodotti", "Azioni"},
	EmptyMessage: "Nessuna categoria trovata",
}

// CategoriesController owns the category cache. The category list is short
// and renders unpaginated. The item count per category and the delete guard
// both consult the items cache through itemsProvider.
type CategoriesController struct {
	svc           *inventory.Service
	res           *cache.Resource[model.Category]
	itemsProvider func() []model.Item
	notifier      notifier.Notifier
	sink          RenderSink
}

func NewCategoriesController(svc *inventory.Service, res *cache.Resource[model.Category], itemsProvider func() []model.Item, notif notifier.Notifier, sink RenderSink) *CategoriesController {
	return &CategoriesController{
		svc:           svc,
		res:           res,
		itemsProvider: itemsProvider,
		notifier:      notif,
		sink:          sink,
	}
}

func (c *CategoriesController) Load(ctx context.Context) {
	c.res.EnsureLoaded(ctx, "", func(ctx context.Context) ([]model.Category, error) {
		return c.svc.Categories(ctx)
	}, c.render)
}

// Categories exposes the cached list for the item form's category select.
func (c *CategoriesController) Categories() []model.Category {
	return c.res.Get()
}

func (c *CategoriesController) Create(ctx context.Context, req *model.UpsertCategoryRequest) error {
	if _, err := c.svc.CreateCategory(ctx, req); err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante il salvataggio della categoria")
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Categoria creata con successo")
	return nil
}

func (c *CategoriesController) Update(ctx context.Context, id int64, req *model.UpsertCategoryRequest) error {
	if _, err := c.svc.UpdateCategory(ctx, id, req); err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante il salvataggio della categoria")
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Categoria aggiornata con successo")
	return nil
}

// Delete refuses categories that still contain products; the guard runs
// client-side and issues no request when it trips.
func (c *CategoriesController) Delete(ctx context.Context, id int64) error {
	if err := c.svc.DeleteCategory(ctx, id, c.itemsProvider()); err != nil {
		if errors.CodeOf(err) == errors.ErrValidation {
			c.notifier.Notify(notifier.LevelError, err.Error())
		} else {
			c.notifier.Notify(notifier.LevelError, "Errore durante l'eliminazione della categoria")
		}
		return err
	}
	c.res.Invalidate()
	c.Load(ctx)
	c.notifier.Notify(notifier.LevelSuccess, "Categoria eliminata con successo")
	return nil
}

func (c *CategoriesController) render(snap cache.Snapshot[model.Category]) {
	items := c.itemsProvider()
	rowFn := func(cat model.Category) view.Row {
		return categoryRow(cat, items)
	}
	c.sink(Render{
		Section: SectionCategories,
		Body:    view.Render(categoriesTable, snap, rowFn),
	})
}

func categoryRow(cat model.Category, items []model.Item) view.Row {
	count := 0
	for _, item := range items {
		if item.CategoryID == cat.ID {
			count++
		}
	}
	return view.Row{
		{Text: strconv.FormatInt(cat.ID, 10)},
		{Text: cat.Name},
		{Text: cat.Description},
		{Text: strconv.Itoa(count)},
		{Text: "Modifica | Elimina", Class: "table-actions"},
	}
}

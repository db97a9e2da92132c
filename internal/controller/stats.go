package controller

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-console/internal/service/inventory"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// SectionInventoryStats is the inventory stat-card strip's section id.
const SectionInventoryStats = "inventory-stats"

// StatsController renders the inventory counters: product total, low-stock
// count, stock valuation and category count.
type StatsController struct {
	svc      *inventory.Service
	notifier notifier.Notifier
	sink     RenderSink
}

func NewStatsController(svc *inventory.Service, notif notifier.Notifier, sink RenderSink) *StatsController {
	return &StatsController{svc: svc, notifier: notif, sink: sink}
}

func (c *StatsController) Load(ctx context.Context) {
	stats, err := c.svc.Stats(ctx)
	if err != nil {
		c.notifier.Notify(notifier.LevelError, "Errore durante il caricamento delle statistiche dell'inventario")
		return
	}
	c.sink(Render{
		Section: SectionInventoryStats,
		Body: fmt.Sprintf("Prodotti: %d | Sotto scorta: %d | Valore totale: %s | Categorie: %d",
			stats.TotalItems, stats.LowStockCount, view.FormatCurrency(stats.TotalValue), stats.CategoriesCount),
	})
}

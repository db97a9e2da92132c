package controller

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/service/inventory"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

type transactionsBackend struct {
	mu      sync.Mutex
	queries []string
	posts   int
}

func (b *transactionsBackend) router() *gin.Engine {
	router := gin.New()
	router.GET("/inventory/transactions", func(c *gin.Context) {
		b.mu.Lock()
		b.queries = append(b.queries, c.Request.URL.RawQuery)
		b.mu.Unlock()
		c.JSON(http.StatusOK, []gin.H{
			{"id": 1, "item_id": 1, "transaction_type": "in", "quantity": 10,
				"previous_stock": 5, "new_stock": 15, "staff_id": 7,
				"item":             gin.H{"id": 1, "code": "GRZ-01", "name": "Garza sterile"},
				"transaction_date": "2024-03-05T14:30:00Z"},
			{"id": 2, "item_id": 2, "transaction_type": "out", "quantity": 3,
				"previous_stock": 100, "new_stock": 97, "staff_id": 7,
				"transaction_date": "2024-03-06T09:00:00Z"},
		})
	})
	router.POST("/inventory/transactions", func(c *gin.Context) {
		b.mu.Lock()
		b.posts++
		b.mu.Unlock()
		c.JSON(http.StatusCreated, gin.H{"id": 3})
	})
	router.GET("/inventory/items", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{})
	})
	return router
}

func (b *transactionsBackend) lastQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) == 0 {
		return ""
	}
	return b.queries[len(b.queries)-1]
}

func (b *transactionsBackend) queryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queries)
}

func newTransactionsFixture(t *testing.T, backend *transactionsBackend, items []model.Item) (*TransactionsController, *renderRecorder, *notifier.Recorder) {
	t.Helper()
	api, notifs := newTestAPI(t, backend.router())
	svc := inventory.NewService(api, testValidator(), testLogger())
	res := cache.NewResource[model.StockTransaction](testResourceConfig("transactions", 10))
	renders := &renderRecorder{}
	provider := func() []model.Item { return items }
	return NewTransactionsController(svc, res, provider, notifs, renders.sink), renders, notifs
}

func TestTransactionsRowFormatting(t *testing.T) {
	backend := &transactionsBackend{}
	ctrl, renders, _ := newTransactionsFixture(t, backend, nil)

	ctrl.Load(context.Background())
	renders.waitCount(t, 2)

	body := renders.last().Body
	assert.Contains(t, body, "GRZ-01 - Garza sterile")
	assert.Contains(t, body, `class="text-success"`)
	assert.Contains(t, body, `class="text-danger"`)
	assert.Contains(t, body, "<td>+10</td>")
	assert.Contains(t, body, "<td>-3</td>")
	// The second movement carries no embedded item.
	assert.Contains(t, body, "N/A")
}

func TestTransactionsProductSearchResolvesItemID(t *testing.T) {
	items := []model.Item{
		{ID: 1, Code: "GRZ-01", Name: "Garza sterile"},
		{ID: 2, Code: "SRG-02", Name: "Siringa 5ml"},
	}
	backend := &transactionsBackend{}
	ctrl, renders, _ := newTransactionsFixture(t, backend, items)

	ctrl.ApplyFilters(context.Background(), "siringa", "")
	renders.waitCount(t, 2)

	assert.Contains(t, backend.lastQuery(), "item_id=2")
}

func TestTransactionsUnmatchedSearchDropsItemFilter(t *testing.T) {
	backend := &transactionsBackend{}
	ctrl, renders, _ := newTransactionsFixture(t, backend, nil)

	ctrl.ApplyFilters(context.Background(), "introvabile", model.TransactionOut)
	renders.waitCount(t, 2)

	assert.NotContains(t, backend.lastQuery(), "item_id")
	assert.Contains(t, backend.lastQuery(), "transaction_type=out")
}

func TestRecordReloadsLedgerAndItems(t *testing.T) {
	backend := &transactionsBackend{}
	ctrl, renders, notifs := newTransactionsFixture(t, backend, nil)

	itemsAPI, _ := newTestAPI(t, backend.router())
	itemsSvc := inventory.NewService(itemsAPI, testValidator(), testLogger())
	itemsRenders := &renderRecorder{}
	itemsCtrl := NewItemsController(itemsSvc,
		cache.NewResource[model.Item](testResourceConfig("items", 10)),
		notifier.NewRecorder(), itemsRenders.sink)

	ctrl.Load(context.Background())
	renders.waitCount(t, 2)

	err := ctrl.Record(context.Background(), &model.CreateTransactionRequest{
		ItemID: 1, TransactionType: model.TransactionIn, Quantity: 10,
	}, itemsCtrl)
	require.NoError(t, err)

	renders.waitCount(t, 4)
	itemsRenders.waitCount(t, 2)
	assert.Equal(t, 2, backend.queryCount())

	last, ok := notifs.Last()
	require.True(t, ok)
	assert.Equal(t, "Movimento registrato con successo", last.Message)
}

func TestRecordValidationFailureNotifies(t *testing.T) {
	backend := &transactionsBackend{}
	ctrl, _, notifs := newTransactionsFixture(t, backend, nil)

	err := ctrl.Record(context.Background(), &model.CreateTransactionRequest{
		ItemID: 1, TransactionType: "prestito", Quantity: 1,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, backend.posts)

	last, _ := notifs.Last()
	assert.Equal(t, notifier.LevelError, last.Level)
}

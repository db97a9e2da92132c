package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
)

const (
	statsKey = "inventory:stats"
	statsTTL = 30 * time.Second
)

// Service exposes the inventory endpoints: stats, categories, items and
// stock transactions. The stats widget sits behind a short TTL cache that is
// dropped after every inventory mutation.
type Service struct {
	api      *apiclient.Client
	validate *validator.Validate
	stats    *gocache.Cache
	logger   *logger.Logger
}

func NewService(api *apiclient.Client, validate *validator.Validate, log *logger.Logger) *Service {
	return &Service{
		api:      api,
		validate: validate,
		stats:    gocache.New(statsTTL, time.Minute),
		logger:   log,
	}
}

func (s *Service) Stats(ctx context.Context) (*model.InventoryStats, error) {
	if cached, ok := s.stats.Get(statsKey); ok {
		return cached.(*model.InventoryStats), nil
	}
	var stats model.InventoryStats
	if err := s.api.Get(ctx, "/inventory/stats", &stats, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch inventory stats: %w", err)
	}
	s.stats.SetDefault(statsKey, &stats)
	return &stats, nil
}

// InvalidateStats drops the cached stats so the next read refetches.
func (s *Service) InvalidateStats() {
	s.stats.Delete(statsKey)
}

func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.api.Get(ctx, "/inventory/categories", &categories, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, req *model.UpsertCategoryRequest) (*model.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Categoria non valida: %v", err))
	}
	var created model.Category
	if err := s.api.Post(ctx, "/inventory/categories", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.InvalidateStats()
	return &created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req *model.UpsertCategoryRequest) (*model.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Categoria non valida: %v", err))
	}
	var updated model.Category
	if err := s.api.Put(ctx, fmt.Sprintf("/inventory/categories/%d", id), req, &updated); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.InvalidateStats()
	return &updated, nil
}

// DeleteCategory refuses to delete a category that still has items in the
// cached items list; no DELETE is issued in that case.
func (s *Service) DeleteCategory(ctx context.Context, id int64, cachedItems []model.Item) error {
	for _, item := range cachedItems {
		if item.CategoryID == id {
			return errors.NewValidation("Non è possibile eliminare una categoria che contiene prodotti")
		}
	}
	if err := s.api.Delete(ctx, fmt.Sprintf("/inventory/categories/%d", id)); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.InvalidateStats()
	return nil
}

func (s *Service) Items(ctx context.Context, f model.ItemFilters) ([]model.Item, error) {
	query := map[string]string{}
	if f.Search != "" {
		query["search"] = f.Search
	}
	if f.CategoryID != 0 {
		query["category_id"] = strconv.FormatInt(f.CategoryID, 10)
	}
	if f.LowStock {
		query["low_stock"] = "true"
	}
	query["skip"] = strconv.Itoa(f.Skip)
	if f.Limit > 0 {
		query["limit"] = strconv.Itoa(f.Limit)
	}

	var items []model.Item
	if err := s.api.Get(ctx, "/inventory/items", &items, query); err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, nil
}

func (s *Service) CreateItem(ctx context.Context, req *model.UpsertItemRequest) (*model.Item, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Prodotto non valido: %v", err))
	}
	var created model.Item
	if err := s.api.Post(ctx, "/inventory/items", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	s.InvalidateStats()
	return &created, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, req *model.UpsertItemRequest) (*model.Item, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Prodotto non valido: %v", err))
	}
	var updated model.Item
	if err := s.api.Put(ctx, fmt.Sprintf("/inventory/items/%d", id), req, &updated); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	s.InvalidateStats()
	return &updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/inventory/items/%d", id)); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.InvalidateStats()
	return nil
}

func (s *Service) Transactions(ctx context.Context, f model.TransactionFilters) ([]model.StockTransaction, error) {
	query := map[string]string{}
	if f.ItemID != 0 {
		query["item_id"] = strconv.FormatInt(f.ItemID, 10)
	}
	if f.Type != "" {
		query["transaction_type"] = string(f.Type)
	}
	query["skip"] = strconv.Itoa(f.Skip)
	if f.Limit > 0 {
		query["limit"] = strconv.Itoa(f.Limit)
	}

	var transactions []model.StockTransaction
	if err := s.api.Get(ctx, "/inventory/transactions", &transactions, query); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return transactions, nil
}

func (s *Service) CreateTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.StockTransaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Movimento non valido: %v", err))
	}
	var created model.StockTransaction
	if err := s.api.Post(ctx, "/inventory/transactions", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	s.InvalidateStats()
	return &created, nil
}

// MatchItem resolves a product search to a cached item by name or code, used
// to translate the transaction search box into an item_id filter.
func MatchItem(items []model.Item, search string) (*model.Item, bool) {
	needle := strings.ToLower(search)
	for i := range items {
		if strings.Contains(strings.ToLower(items[i].Name), needle) ||
			strings.Contains(strings.ToLower(items[i].Code), needle) {
			return &items[i], true
		}
	}
	return nil, false
}

package cache

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-console/pkg/logger"
)

// FetchFunc loads the full result set for one resource kind with the current
// filters already bound.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Snapshot is a point-in-time view of the cache handed to render callbacks.
// Data is nil until the first successful fetch.
type Snapshot[T any] struct {
	Data     []T
	Err      error
	Loading  bool
	Page     int
	PageSize int
}

// Config configures a resource cache.
type Config struct {
	Name         string
	PageSize     int
	FetchTimeout time.Duration
	Logger       *logger.Logger
}

// Resource caches the last successful fetch for one resource kind. At most
// one fetch per kind is outstanding: EnsureLoaded is a no-op while loading.
// Each Resource is owned by exactly one view controller.
type Resource[T any] struct {
	mu           sync.Mutex
	name         string
	data         []T
	err          error
	loading      bool
	page         int
	pageSize     int
	filterSig    string
	fetchTimeout time.Duration
	logger       *logger.Logger
}

func NewResource[T any](cfg Config) *Resource[T] {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Resource[T]{
		name:         cfg.Name,
		page:         1,
		pageSize:     pageSize,
		fetchTimeout: timeout,
		logger:       log,
	}
}

// EnsureLoaded renders from cache when the data is present, the last fetch
// succeeded and the filter signature is unchanged, otherwise issues one
// fetch. A failed fetch is never served as a cache hit: the next load with
// the same signature retries. A call while a fetch is outstanding is dropped,
// not queued. A changed signature bypasses the cache and resets the page to
// 1. onDone runs with the resulting snapshot; a fetch aborted by navigation
// produces no callback.
func (r *Resource[T]) EnsureLoaded(ctx context.Context, filterSig string, fetch FetchFunc[T], onDone func(Snapshot[T])) {
	r.mu.Lock()
	if r.loading {
		r.mu.Unlock()
		return
	}

	if r.data != nil && r.err == nil && r.filterSig == filterSig {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		if onDone != nil {
			onDone(snap)
		}
		return
	}

	if r.filterSig != filterSig {
		r.page = 1
		r.filterSig = filterSig
	}
	r.loading = true
	loadingSnap := r.snapshotLocked()
	r.mu.Unlock()

	if onDone != nil {
		onDone(loadingSnap)
	}

	go r.fetch(ctx, fetch, onDone)
}

func (r *Resource[T]) fetch(ctx context.Context, fetch FetchFunc[T], onDone func(Snapshot[T])) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	data, err := fetch(fetchCtx)

	r.mu.Lock()
	r.loading = false
	switch {
	case stderrors.Is(err, context.Canceled):
		// Superseded by navigation; prior state stays authoritative.
		r.mu.Unlock()
		return
	case err != nil:
		r.logger.Error(err, "fetch failed", "resource", r.name)
		r.err = err
	default:
		r.data = data
		r.err = nil
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if onDone != nil {
		onDone(snap)
	}
}

// Refresh bypasses the cache-hit path: it issues a fetch even when cached
// data is present, keeping that data authoritative until the fetch lands.
// Used after optimistic mutations. Like EnsureLoaded it is dropped while a
// fetch is outstanding.
func (r *Resource[T]) Refresh(ctx context.Context, filterSig string, fetch FetchFunc[T], onDone func(Snapshot[T])) {
	r.mu.Lock()
	if r.loading {
		r.mu.Unlock()
		return
	}
	if r.filterSig != filterSig {
		r.page = 1
		r.filterSig = filterSig
	}
	r.loading = true
	r.mu.Unlock()

	go r.fetch(ctx, fetch, onDone)
}

// Invalidate discards the cached data so the next EnsureLoaded refetches.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	r.err = nil
	r.filterSig = ""
	r.page = 1
}

// Get returns the cached data, nil if never fetched.
func (r *Resource[T]) Get() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resource[T]) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Remove splices every matching record out of the cache without refetching.
// Returns the number of removed records.
func (r *Resource[T]) Remove(match func(T) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return 0
	}
	kept := r.data[:0]
	removed := 0
	for _, rec := range r.data {
		if match(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.data = kept
	return removed
}

func (r *Resource[T]) Page() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page
}

func (r *Resource[T]) PageSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageSize
}

// NextPage advances the page unless already on the last page for the given
// total. Reports whether the page moved.
func (r *Resource[T]) NextPage(total int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	totalPages := (total + r.pageSize - 1) / r.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if r.page >= totalPages {
		return false
	}
	r.page++
	return true
}

// PrevPage moves back one page, clamped at page 1.
func (r *Resource[T]) PrevPage() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.page <= 1 {
		return false
	}
	r.page--
	return true
}

func (r *Resource[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Data:     r.data,
		Err:      r.err,
		Loading:  r.loading,
		Page:     r.page,
		PageSize: r.pageSize,
	}
}

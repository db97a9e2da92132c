package controller

import (
	"github.com/jwalitptl/clinic-console/internal/cache"
	"github.com/jwalitptl/clinic-console/internal/view"
)

// Render is one completed render of a section: table body markup plus the
// pagination controls' state.
type Render struct {
	Section   string
	Body      string
	PageLabel string
	HasPrev   bool
	HasNext   bool
}

// RenderSink receives section renders; the console shell prints them, tests
// capture them.
type RenderSink func(Render)

// clientPagedRender slices the cached result set to the snapshot's page
// window and derives the pagination state from the full count.
func clientPagedRender[T any](section string, t view.Table, snap cache.Snapshot[T], rowFn view.RowFunc[T]) Render {
	paged := snap
	if snap.Err == nil && snap.Data != nil {
		paged.Data = view.PageSlice(snap.Data, snap.Page, snap.PageSize)
		if paged.Data == nil {
			paged.Data = []T{}
		}
	}
	pg := view.NewPagination(len(snap.Data), snap.Page, snap.PageSize)
	return Render{
		Section:   section,
		Body:      view.Render(t, paged, rowFn),
		PageLabel: pg.Label(),
		HasPrev:   pg.HasPrev(),
		HasNext:   pg.HasNext(),
	}
}

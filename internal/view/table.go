package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/jwalitptl/clinic-console/internal/cache"
)

// Cell is one table cell with an optional style class.
type Cell struct {
	Text  string
	Class string
}

// Row is one rendered table row.
type Row []Cell

// RowFunc projects a record into its table row.
type RowFunc[T any] func(T) Row

// Table describes one section's table surface.
type Table struct {
	Columns      []string
	EmptyMessage string
}

// Render produces the tbody markup for a snapshot. Precedence mirrors the
// dashboard tables: a failed fetch renders an error row, never-fetched data a
// loading row, an empty result set a single empty row.
func Render[T any](t Table, snap cache.Snapshot[T], rowFn RowFunc[T]) string {
	cols := len(t.Columns)
	switch {
	case snap.Err != nil:
		return specialRow(cols, "error-cell", "Errore durante il caricamento dei dati")
	case snap.Data == nil:
		return specialRow(cols, "loading-cell", "Caricamento dati...")
	case len(snap.Data) == 0:
		return specialRow(cols, "empty-cell", t.EmptyMessage)
	}

	var b strings.Builder
	for _, rec := range snap.Data {
		b.WriteString("<tr>")
		for _, cell := range rowFn(rec) {
			if cell.Class != "" {
				fmt.Fprintf(&b, `<td class=%q>%s</td>`, cell.Class, html.EscapeString(cell.Text))
			} else {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell.Text))
			}
		}
		b.WriteString("</tr>")
	}
	return b.String()
}

func specialRow(cols int, class, message string) string {
	return fmt.Sprintf(`<tr><td colspan="%d" class=%q>%s</td></tr>`, cols, class, html.EscapeString(message))
}

// Pagination is the page window over a record count.
type Pagination struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

func NewPagination(total, page, pageSize int) Pagination {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether the previous-page control is enabled.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether the next-page control is enabled.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p Pagination) Label() string {
	return fmt.Sprintf("Pagina %d di %d", p.Page, p.TotalPages)
}

// PageSlice returns the window [ (page-1)*pageSize, page*pageSize ) of data,
// clamped to its bounds.
func PageSlice[T any](data []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(data) {
		return nil
	}
	end := start + pageSize
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}

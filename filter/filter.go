package filter

import (
	"log"
	"strings"

	"registry-harvester/config"
	"registry-harvester/models"
)

// Filter projects a harvest result onto a configured subset of columns.
type Filter struct {
	columns []config.ColumnSelect
}

// NewFilter creates a Filter for the given column selection. An empty
// selection leaves results untouched.
func NewFilter(columns []config.ColumnSelect) *Filter {
	return &Filter{columns: columns}
}

// Apply keeps only the selected columns, in selection order, renaming
// them when a rename is configured. Matching is by case-insensitive
// header substring, first matching column wins. If any selection cannot
// be resolved (or the result has no header), the result is returned
// unchanged so a harvest is never lost to a column mismatch.
func (f *Filter) Apply(result *models.HarvestResult) *models.HarvestResult {
	if len(f.columns) == 0 {
		return result
	}
	if len(result.Header) == 0 {
		log.Printf("[MAIN] No header for %q; keeping all columns\n", result.Name)
		return result
	}

	indexes := make([]int, 0, len(f.columns))
	header := make(models.Header, 0, len(f.columns))
	for _, col := range f.columns {
		idx := matchColumn(result.Header, col.Match)
		if idx < 0 {
			log.Printf("[MAIN] Could not find column matching %q for %q; keeping all columns\n", col.Match, result.Name)
			return result
		}
		indexes = append(indexes, idx)
		name := col.Rename
		if name == "" {
			name = result.Header[idx]
		}
		header = append(header, name)
	}

	projected := &models.HarvestResult{Name: result.Name, Header: header}
	for _, row := range result.Rows {
		out := make(models.Row, len(indexes))
		for i, idx := range indexes {
			if idx < len(row) {
				out[i] = row[idx]
			}
		}
		projected.Rows = append(projected.Rows, out)
	}
	return projected
}

// matchColumn returns the index of the first header column containing
// the substring, ignoring case, or -1.
func matchColumn(header models.Header, match string) int {
	needle := strings.ToLower(match)
	for i, name := range header {
		if strings.Contains(strings.ToLower(name), needle) {
			return i
		}
	}
	return -1
}

package columnselector

import (
	"math"
	"strings"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
	"bubbleviz/internal/traces"
)

// ColumnKind is the inferred content type of a column
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindString      ColumnKind = "string"
	KindEmpty       ColumnKind = "empty"
)

const maxSampleSize = 500

// InferColumnKinds classifies each column from a sample of its cells. A
// column is numeric when at least 90% of its non-empty cells parse, and
// categorical when it has few distinct values.
func InferColumnKinds(tbl *table.Table) []ColumnKind {
	kinds := make([]ColumnKind, len(tbl.Columns))
	sample := stratifiedSample(len(tbl.Rows), maxSampleSize)

	for ci, col := range tbl.Columns {
		unique := make(map[string]bool)
		valid, numeric := 0, 0
		for _, ri := range sample {
			v := strings.TrimSpace(tbl.Rows[ri][col.Index])
			if v == "" {
				continue
			}
			valid++
			unique[v] = true
			if !math.IsNaN(traces.ParseNumber(v)) {
				numeric++
			}
		}

		switch {
		case valid == 0:
			kinds[ci] = KindEmpty
		case float64(numeric) >= 0.9*float64(valid):
			kinds[ci] = KindNumeric
		case len(unique) <= 20 && float64(len(unique)) <= 0.5*float64(valid):
			kinds[ci] = KindCategorical
		default:
			kinds[ci] = KindString
		}
	}
	return kinds
}

// Suggest proposes a role configuration: the first three numeric columns for
// x, y and z, and the first categorical column (falling back to any text
// column) for category. Roles without a candidate stay unset.
func Suggest(tbl *table.Table) chart.AxisConfig {
	var cfg chart.AxisConfig
	kinds := InferColumnKinds(tbl)

	numericRoles := []chart.Role{chart.RoleXAxis, chart.RoleYAxis, chart.RoleZAxis}
	var category, fallback *table.Column
	for i, kind := range kinds {
		col := tbl.Columns[i]
		switch kind {
		case KindNumeric:
			if len(numericRoles) > 0 {
				cfg.Set(numericRoles[0], &col)
				numericRoles = numericRoles[1:]
			}
		case KindCategorical:
			if category == nil {
				category = &col
			}
		case KindString:
			if fallback == nil {
				fallback = &col
			}
		}
	}
	if category == nil {
		category = fallback
	}
	cfg.Set(chart.RoleCategory, category)
	return cfg
}

// stratifiedSample returns up to size row indices spread evenly over total rows
func stratifiedSample(total, size int) []int {
	if size >= total {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	indices := make([]int, 0, size)
	step := float64(total) / float64(size)
	for i := 0; i < size; i++ {
		idx := int(math.Floor(float64(i) * step))
		if idx < total {
			indices = append(indices, idx)
		}
	}
	return indices
}

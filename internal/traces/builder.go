package traces

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
)

// ErrNotReady is returned when at least one axis role has no column selected
var ErrNotReady = errors.New("axis roles are not fully configured")

// HoverSeparator joins the "name: value" fragments of one point's hover text
const HoverSeparator = "<br />"

// Options tunes trace construction
type Options struct {
	// SortGroups emits traces in lexical key order instead of first appearance
	SortGroups bool
}

// Group is the set of row indices sharing one trimmed category value
type Group struct {
	Key  string
	Rows []int
}

// BuildTraces turns a table into one bubble trace per category group
func BuildTraces(tbl *table.Table, cfg *chart.AxisConfig) ([]chart.Trace, error) {
	return BuildTracesWithOptions(tbl, cfg, Options{})
}

// BuildTracesWithOptions is BuildTraces with explicit options
func BuildTracesWithOptions(tbl *table.Table, cfg *chart.AxisConfig, opts Options) ([]chart.Trace, error) {
	if !cfg.Ready() {
		return nil, ErrNotReady
	}

	groups := GroupRows(tbl.Rows, cfg.Category.Index)
	if opts.SortGroups {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	}

	others := otherColumns(tbl.Columns, cfg)

	out := make([]chart.Trace, 0, len(groups))
	for _, g := range groups {
		tr := chart.Trace{
			Name:   g.Key,
			Mode:   "markers",
			X:      make(chart.Values, len(g.Rows)),
			Y:      make(chart.Values, len(g.Rows)),
			Text:   make([]string, len(g.Rows)),
			Marker: chart.Marker{Size: make(chart.Values, len(g.Rows))},
		}
		for i, ri := range g.Rows {
			row := tbl.Rows[ri]
			tr.X[i] = ParseNumber(row[cfg.XAxis.Index])
			tr.Y[i] = ParseNumber(row[cfg.YAxis.Index])
			tr.Marker.Size[i] = ParseNumber(row[cfg.ZAxis.Index])
			tr.Text[i] = HoverText(row, others)
		}
		out = append(out, tr)
	}
	return out, nil
}

// GroupRows partitions row indices by the trimmed value of the category cell.
// Groups come back in order of first appearance and rows keep their relative
// order inside a group.
func GroupRows(rows []table.Row, categoryIndex int) []Group {
	var groups []Group
	pos := make(map[string]int)
	for i, row := range rows {
		key := strings.TrimSpace(row[categoryIndex])
		gi, ok := pos[key]
		if !ok {
			gi = len(groups)
			pos[key] = gi
			groups = append(groups, Group{Key: key})
		}
		groups[gi].Rows = append(groups[gi].Rows, i)
	}
	return groups
}

// otherColumns returns the columns not bound to any role, in table order
func otherColumns(cols []table.Column, cfg *chart.AxisConfig) []table.Column {
	exclude := map[int]bool{
		cfg.XAxis.Index:    true,
		cfg.YAxis.Index:    true,
		cfg.ZAxis.Index:    true,
		cfg.Category.Index: true,
	}
	var others []table.Column
	for i, c := range cols {
		if !exclude[i] {
			others = append(others, c)
		}
	}
	return others
}

// HoverText formats the given columns of a row as "name: value" pairs joined
// by HoverSeparator. Both name and value are trimmed.
func HoverText(row table.Row, cols []table.Column) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, strings.TrimSpace(c.Name)+": "+strings.TrimSpace(row[c.Index]))
	}
	return strings.Join(parts, HoverSeparator)
}

var numberPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseNumber reads the leading decimal number of a cell, ignoring
// surrounding whitespace and any trailing text. Cells without a numeric
// prefix yield NaN.
func ParseNumber(s string) float64 {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of range exponents come back as ±Inf with an error
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

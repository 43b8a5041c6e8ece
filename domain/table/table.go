package table

import (
	"fmt"
	"strings"
)

// Column describes one column of a result set
type Column struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Row is one record, cells aligned by column index. Cells are kept exactly as
// the host delivered them, surrounding whitespace included.
type Row []string

// Table is an ordered result set as handed over by the notebook host
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// New builds a table from header names and raw rows, assigning column indexes
// in header order.
func New(header []string, rows [][]string) *Table {
	t := &Table{
		Columns: make([]Column, len(header)),
		Rows:    make([]Row, len(rows)),
	}
	for i, name := range header {
		t.Columns[i] = Column{Name: name, Index: i}
	}
	for i, r := range rows {
		t.Rows[i] = Row(r)
	}
	return t
}

// Validate reports the first row whose cell count differs from the column count
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("table is nil")
	}
	for i, c := range t.Columns {
		if c.Index != i {
			return fmt.Errorf("column %q has index %d at position %d", c.Name, c.Index, i)
		}
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", i, len(r), len(t.Columns))
		}
	}
	return nil
}

// ColumnByName looks a column up by its trimmed display name
func (t *Table) ColumnByName(name string) (Column, bool) {
	want := strings.TrimSpace(name)
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == want {
			return c, true
		}
	}
	return Column{}, false
}

// Header returns the column names in table order
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

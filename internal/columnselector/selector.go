package columnselector

import (
	"fmt"
	"sync"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
	"bubbleviz/internal/errors"
	"bubbleviz/ports"
)

var descriptions = map[chart.Role]string{
	chart.RoleXAxis:    "horizontal position",
	chart.RoleYAxis:    "vertical position",
	chart.RoleZAxis:    "bubble size",
	chart.RoleCategory: "color and legend group",
}

// Transformation owns the axis role configuration of one visualization and
// is the surface the host's column selection UI drives.
type Transformation struct {
	mu     sync.RWMutex
	config chart.AxisConfig
	props  []ports.SelectorProp
}

// New creates a transformation starting from cfg, which is copied
func New(cfg *chart.AxisConfig) *Transformation {
	t := &Transformation{config: cfg.Clone()}
	for _, r := range chart.Roles {
		t.props = append(t.props, ports.SelectorProp{Name: r, Description: descriptions[r]})
	}
	return t
}

// Spec returns the role descriptor with the current selection
func (t *Transformation) Spec() ports.SelectorSpec {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sel := make(map[chart.Role]*table.Column, len(chart.Roles))
	cfg := t.config.Clone()
	for _, r := range chart.Roles {
		sel[r] = cfg.Get(r)
	}
	return ports.SelectorSpec{
		Props:     append([]ports.SelectorProp(nil), t.props...),
		Selection: sel,
	}
}

// Config returns a snapshot of the current role configuration
func (t *Transformation) Config() chart.AxisConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config.Clone()
}

// Select binds col to role
func (t *Transformation) Select(role chart.Role, col table.Column) error {
	if err := checkRole(role); err != nil {
		return err
	}
	if col.Index < 0 {
		return errors.InvalidInput(fmt.Sprintf("column %q has negative index", col.Name))
	}
	t.mu.Lock()
	t.config.Set(role, &col)
	t.mu.Unlock()
	return nil
}

// SelectByName binds the column of tbl with the given name to role
func (t *Transformation) SelectByName(tbl *table.Table, role chart.Role, name string) error {
	if tbl == nil {
		return errors.InvalidInput("no table to select columns from")
	}
	col, ok := tbl.ColumnByName(name)
	if !ok {
		return errors.NotFound(fmt.Sprintf("column %q", name))
	}
	return t.Select(role, col)
}

// SelectAll binds every named role to its column of tbl. All names are
// resolved before anything changes, so a failure leaves the selection as it was.
func (t *Transformation) SelectAll(tbl *table.Table, names map[chart.Role]string) error {
	if tbl == nil {
		return errors.InvalidInput("no table to select columns from")
	}
	resolved := make(map[chart.Role]table.Column, len(names))
	for role, name := range names {
		if err := checkRole(role); err != nil {
			return err
		}
		col, ok := tbl.ColumnByName(name)
		if !ok {
			return errors.NotFound(fmt.Sprintf("%s column %q", role, name))
		}
		resolved[role] = col
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for role, col := range resolved {
		col := col
		t.config.Set(role, &col)
	}
	return nil
}

// Clear unsets role
func (t *Transformation) Clear(role chart.Role) error {
	if err := checkRole(role); err != nil {
		return err
	}
	t.mu.Lock()
	t.config.Set(role, nil)
	t.mu.Unlock()
	return nil
}

func checkRole(role chart.Role) error {
	if _, ok := chart.ParseRole(string(role)); !ok {
		return errors.InvalidInput(fmt.Sprintf("unknown role %q", role))
	}
	return nil
}

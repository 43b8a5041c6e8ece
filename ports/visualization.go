package ports

import (
	"context"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
)

// SelectorSpec describes the column roles a host must let the user pick
type SelectorSpec struct {
	Props     []SelectorProp               `json:"props"`
	Selection map[chart.Role]*table.Column `json:"selection"`
}

// SelectorProp is one role entry of the selector UI
type SelectorProp struct {
	Name        chart.Role `json:"name"`
	Description string     `json:"description,omitempty"`
}

// Transformation is the column selection surface a host drives
type Transformation interface {
	Spec() SelectorSpec
	Select(role chart.Role, col table.Column) error
	SelectByName(tbl *table.Table, role chart.Role, name string) error
	SelectAll(tbl *table.Table, names map[chart.Role]string) error
	Clear(role chart.Role) error
}

// Visualization is the component contract between the notebook host and a
// chart plugin.
type Visualization interface {
	Render(ctx context.Context, tbl *table.Table) error
	Transformation() Transformation
}

// TableSource produces a result set for a visualization
type TableSource interface {
	Fetch(ctx context.Context) (*table.Table, error)
}

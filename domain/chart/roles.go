package chart

import (
	"bubbleviz/domain/table"
)

// Role names one of the four column assignments a user configures
type Role string

const (
	RoleXAxis    Role = "xAxis"
	RoleYAxis    Role = "yAxis"
	RoleZAxis    Role = "zAxis"
	RoleCategory Role = "category"
)

// Roles lists every role in the order the settings panel shows them
var Roles = []Role{RoleXAxis, RoleYAxis, RoleZAxis, RoleCategory}

// ParseRole validates a role name coming from a host
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// AxisConfig maps each role to the selected column, nil when unset
type AxisConfig struct {
	XAxis    *table.Column `json:"xAxis,omitempty"`
	YAxis    *table.Column `json:"yAxis,omitempty"`
	ZAxis    *table.Column `json:"zAxis,omitempty"`
	Category *table.Column `json:"category,omitempty"`
}

// Get returns the column selected for a role
func (c *AxisConfig) Get(r Role) *table.Column {
	switch r {
	case RoleXAxis:
		return c.XAxis
	case RoleYAxis:
		return c.YAxis
	case RoleZAxis:
		return c.ZAxis
	case RoleCategory:
		return c.Category
	}
	return nil
}

// Set assigns (or clears, with nil) the column for a role
func (c *AxisConfig) Set(r Role, col *table.Column) {
	switch r {
	case RoleXAxis:
		c.XAxis = col
	case RoleYAxis:
		c.YAxis = col
	case RoleZAxis:
		c.ZAxis = col
	case RoleCategory:
		c.Category = col
	}
}

// Ready reports whether all four roles are set
func (c *AxisConfig) Ready() bool {
	return c != nil && len(c.Missing()) == 0
}

// Missing lists unset roles in role order
func (c *AxisConfig) Missing() []Role {
	if c == nil {
		return append([]Role(nil), Roles...)
	}
	var missing []Role
	for _, r := range Roles {
		if c.Get(r) == nil {
			missing = append(missing, r)
		}
	}
	return missing
}

// Clone returns a copy that shares no column pointers with c
func (c *AxisConfig) Clone() AxisConfig {
	var out AxisConfig
	if c == nil {
		return out
	}
	for _, r := range Roles {
		if col := c.Get(r); col != nil {
			cp := *col
			out.Set(r, &cp)
		}
	}
	return out
}

package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ChartID identifies one display target; it doubles as the DOM id of the
// chart container.
type ChartID ID

// NewChartID returns an id usable as an HTML element id
func NewChartID() ChartID {
	return ChartID("plotly-" + NewID().String())
}

func (id ChartID) String() string { return ID(id).String() }

// ParseChartID validates a chart id supplied by a host
func ParseChartID(s string) (ChartID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("chart ID cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n\"'<>&") {
		return "", fmt.Errorf("chart ID %q contains characters not allowed in an element id", s)
	}
	return ChartID(s), nil
}

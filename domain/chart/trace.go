package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Values is a numeric series that may contain NaN or ±Inf. JSON has neither,
// so both are written as null, which Plotly treats as a gap.
type Values []float64

// MarshalJSON writes non-finite values as null
func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads null entries back as NaN
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	*v = out
	return nil
}

// Marker carries per-point bubble sizes
type Marker struct {
	Size Values `json:"size"`
}

// Trace is one renderable series, one per category group. X, Y, Marker.Size
// and Text are parallel: index i refers to the same source row in each.
type Trace struct {
	Name   string   `json:"name"`
	Mode   string   `json:"mode"`
	X      Values   `json:"x"`
	Y      Values   `json:"y"`
	Text   []string `json:"text"`
	Marker Marker   `json:"marker"`
}

// Z returns the bubble sizes
func (t Trace) Z() Values {
	return t.Marker.Size
}

// Len returns the number of points in the trace
func (t Trace) Len() int {
	return len(t.X)
}

// Margin in pixels
type Margin struct {
	T int `json:"t"`
}

// Layout is the chart layout handed to the renderer
type Layout struct {
	HoverMode string `json:"hovermode"`
	Margin    Margin `json:"margin"`
}

// DisplayOptions controls chart library chrome
type DisplayOptions struct {
	ShowLink       bool `json:"showLink"`
	DisplayModeBar bool `json:"displayModeBar"`
}

// DefaultLayout is the fixed bubble chart layout: closest point hover and no
// top margin.
func DefaultLayout() Layout {
	return Layout{HoverMode: "closest", Margin: Margin{T: 0}}
}

// DefaultDisplayOptions hides the edit link and the mode bar
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{ShowLink: false, DisplayModeBar: false}
}

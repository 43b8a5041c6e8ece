package traces

import (
	"encoding/json"
	"math"

	"bubbleviz/domain/chart"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one trace for the settings panel and the CLI
type Summary struct {
	Name      string  `json:"name"`
	Points    int     `json:"points"`
	Skipped   int     `json:"skipped"`
	MeanX     float64 `json:"mean_x"`
	MeanY     float64 `json:"mean_y"`
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`
	MinZ      float64 `json:"min_z"`
	MaxZ      float64 `json:"max_z"`
	MedianZ   float64 `json:"median_z"`
}

// Summarize computes per trace statistics over the points whose x, y and z
// all parsed. Points with a NaN in any slot count as skipped. The centroid is
// weighted by bubble size.
func Summarize(trs []chart.Trace) []Summary {
	out := make([]Summary, 0, len(trs))
	for _, tr := range trs {
		xs, ys, zs := FinitePoints(tr)
		s := Summary{
			Name:    tr.Name,
			Points:  tr.Len(),
			Skipped: tr.Len() - len(xs),
		}
		if len(xs) == 0 {
			s.MeanX, s.MeanY = math.NaN(), math.NaN()
			s.CentroidX, s.CentroidY = math.NaN(), math.NaN()
			s.MinZ, s.MaxZ, s.MedianZ = math.NaN(), math.NaN(), math.NaN()
			out = append(out, s)
			continue
		}

		s.MeanX = stat.Mean(xs, nil)
		s.MeanY = stat.Mean(ys, nil)

		weights := make([]float64, len(zs))
		var total float64
		for i, z := range zs {
			weights[i] = math.Abs(z)
			total += weights[i]
		}
		if total > 0 {
			s.CentroidX = stat.Mean(xs, weights)
			s.CentroidY = stat.Mean(ys, weights)
		} else {
			s.CentroidX, s.CentroidY = s.MeanX, s.MeanY
		}

		s.MinZ, _ = stats.Min(zs)
		s.MaxZ, _ = stats.Max(zs)
		s.MedianZ, _ = stats.Median(zs)
		out = append(out, s)
	}
	return out
}

// FinitePoints returns copies of x, y and z restricted to the points where
// all three are finite numbers.
func FinitePoints(tr chart.Trace) (xs, ys, zs []float64) {
	z := tr.Z()
	for i := range tr.X {
		if !finite(tr.X[i]) || !finite(tr.Y[i]) || !finite(z[i]) {
			continue
		}
		xs = append(xs, tr.X[i])
		ys = append(ys, tr.Y[i])
		zs = append(zs, z[i])
	}
	return xs, ys, zs
}

// SizeScale maps bubble sizes linearly onto [minPx, maxPx]. A constant series
// maps every point to the middle of the range.
type SizeScale struct {
	lo, hi       float64
	minPx, maxPx float64
}

// NewSizeScale builds a scale over every finite z value of the traces
func NewSizeScale(trs []chart.Trace, minPx, maxPx float64) SizeScale {
	var all stats.Float64Data
	for _, tr := range trs {
		_, _, zs := FinitePoints(tr)
		all = append(all, zs...)
	}
	sc := SizeScale{minPx: minPx, maxPx: maxPx}
	if len(all) == 0 {
		return sc
	}
	sc.lo, _ = all.Min()
	sc.hi, _ = all.Max()
	return sc
}

// Pixels returns the dot size for bubble size z
func (s SizeScale) Pixels(z float64) float64 {
	if s.hi <= s.lo {
		return (s.minPx + s.maxPx) / 2
	}
	return s.minPx + (z-s.lo)/(s.hi-s.lo)*(s.maxPx-s.minPx)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON writes statistics that are NaN (empty traces) as null
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string   `json:"name"`
		Points    int      `json:"points"`
		Skipped   int      `json:"skipped"`
		MeanX     *float64 `json:"mean_x"`
		MeanY     *float64 `json:"mean_y"`
		CentroidX *float64 `json:"centroid_x"`
		CentroidY *float64 `json:"centroid_y"`
		MinZ      *float64 `json:"min_z"`
		MaxZ      *float64 `json:"max_z"`
		MedianZ   *float64 `json:"median_z"`
	}{
		s.Name, s.Points, s.Skipped,
		nullable(s.MeanX), nullable(s.MeanY),
		nullable(s.CentroidX), nullable(s.CentroidY),
		nullable(s.MinZ), nullable(s.MaxZ), nullable(s.MedianZ),
	})
}

func nullable(f float64) *float64 {
	if !finite(f) {
		return nil
	}
	return &f
}

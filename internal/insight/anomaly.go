package insight

import (
	"fmt"
	"math"
	"sort"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

// DefaultThreshold is the robust z-score above which a value is flagged.
const DefaultThreshold = 3.5

// Anomaly is one flagged cell.
type Anomaly struct {
	Row   int     `json:"row"`
	Value float64 `json:"value"`
	Score float64 `json:"score"`
}

// AnomalyReport lists the flagged rows of one column, highest |score| first.
type AnomalyReport struct {
	Column    string    `json:"column"`
	Median    float64   `json:"median"`
	MAD       float64   `json:"mad"`
	Threshold float64   `json:"threshold"`
	Anomalies []Anomaly `json:"anomalies"`
}

// Anomalies flags values whose robust z-score 0.6745*(v-median)/MAD exceeds
// threshold in absolute value. threshold <= 0 uses DefaultThreshold. A column
// with MAD 0 yields no anomalies.
func Anomalies(t *dataset.Table, column string, threshold float64) (*AnomalyReport, error) {
	c, err := t.Lookup(column)
	if err != nil {
		return nil, err
	}
	if c.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, column, c.Kind)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var vals []float64
	var rows []int
	for i, ok := range c.Valid {
		if ok {
			vals = append(vals, c.Nums[i])
			rows = append(rows, i)
		}
	}
	rep := &AnomalyReport{Column: column, Threshold: threshold, Anomalies: []Anomaly{}}
	rep.Median, rep.MAD = medianMAD(vals)
	if rep.MAD == 0 {
		return rep, nil
	}
	for i, v := range vals {
		z := RobustZ(v, rep.Median, rep.MAD)
		if math.Abs(z) > threshold {
			rep.Anomalies = append(rep.Anomalies, Anomaly{Row: rows[i], Value: v, Score: z})
		}
	}
	sort.SliceStable(rep.Anomalies, func(i, j int) bool {
		return math.Abs(rep.Anomalies[i].Score) > math.Abs(rep.Anomalies[j].Score)
	})
	return rep, nil
}

// RobustZ is the modified z-score of v.
func RobustZ(v, median, mad float64) float64 {
	if mad == 0 {
		return 0
	}
	return 0.6745 * (v - median) / mad
}

// medianMAD computes the median and the median absolute deviation.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = midpoint(cp)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	return median, midpoint(dev)
}

// midpoint averages the two middle values of an even-length sorted slice.
func midpoint(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

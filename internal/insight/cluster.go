package insight

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

var (
	// ErrNotNumeric is returned when a selected column is not numeric.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrTooFewRows is returned when there are fewer usable rows than clusters.
	ErrTooFewRows = errors.New("not enough complete rows")
)

// Clustering is the result of a k-means run over selected numeric columns.
type Clustering struct {
	Columns []string `json:"columns"`
	K       int      `json:"k"`
	// Labels has one entry per table row; -1 marks rows with missing values.
	Labels []int `json:"labels"`
	// Centers are expressed in the columns' original units.
	Centers [][]float64 `json:"centers"`
	Sizes   []int       `json:"sizes"`
}

// KMeans z-score standardizes the columns and partitions complete rows into k
// clusters. Clusters are renumbered by first appearance so labels are stable
// across runs for well separated data.
func KMeans(t *dataset.Table, columns []string, k int) (*Clustering, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	if len(columns) == 0 {
		return nil, errors.New("no columns selected")
	}
	cols := make([]*dataset.Column, len(columns))
	for i, name := range columns {
		c, err := t.Lookup(name)
		if err != nil {
			return nil, err
		}
		if c.Kind != dataset.KindNumeric {
			return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, c.Kind)
		}
		cols[i] = c
	}

	var rows []int
	for i := 0; i < t.NumRows(); i++ {
		complete := true
		for _, c := range cols {
			if !c.Valid[i] {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	if distinctPoints(cols, rows) < k {
		return nil, fmt.Errorf("%w: need %d distinct points, have %d", ErrTooFewRows, k, distinctPoints(cols, rows))
	}

	means := make([]float64, len(cols))
	stds := make([]float64, len(cols))
	for j, c := range cols {
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = c.Nums[r]
		}
		means[j], stds[j] = stat.MeanStdDev(vals, nil)
		if stds[j] == 0 || len(vals) < 2 {
			stds[j] = 1
		}
	}

	obs := make(clusters.Observations, len(rows))
	for i, r := range rows {
		p := make(clusters.Coordinates, len(cols))
		for j, c := range cols {
			p[j] = (c.Nums[r] - means[j]) / stds[j]
		}
		obs[i] = p
	}
	parts, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	out := &Clustering{Columns: columns, K: k, Labels: make([]int, t.NumRows())}
	for i := range out.Labels {
		out.Labels[i] = -1
	}
	remap := map[int]int{}
	for i, r := range rows {
		raw := parts.Nearest(obs[i])
		label, ok := remap[raw]
		if !ok {
			label = len(remap)
			remap[raw] = label
		}
		out.Labels[r] = label
	}
	out.Centers = make([][]float64, len(remap))
	out.Sizes = make([]int, len(remap))
	for raw, label := range remap {
		center := make([]float64, len(cols))
		for j := range cols {
			center[j] = parts[raw].Center[j]*stds[j] + means[j]
		}
		out.Centers[label] = center
	}
	for _, l := range out.Labels {
		if l >= 0 {
			out.Sizes[l]++
		}
	}
	return out, nil
}

func distinctPoints(cols []*dataset.Column, rows []int) int {
	seen := map[string]struct{}{}
	var b strings.Builder
	for _, r := range rows {
		b.Reset()
		for _, c := range cols {
			b.WriteString(strconv.FormatFloat(c.Nums[r], 'g', -1, 64))
			b.WriteByte('|')
		}
		seen[b.String()] = struct{}{}
	}
	return len(seen)
}

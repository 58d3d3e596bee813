package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary is a markdown-friendly description of a table.
type Summary struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
	Types   ColumnTypes     `json:"types"`
	Corr    []PairCorr      `json:"correlations,omitempty"`
	Samples [][]string      `json:"samples,omitempty"`
}

// ColumnSummary captures the class and statistics of one column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Class   string `json:"class"`
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`

	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Std    float64 `json:"std,omitempty"`
	Median float64 `json:"median,omitempty"`

	First time.Time `json:"first,omitempty"`
	Last  time.Time `json:"last,omitempty"`

	TopValues    []CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PairCorr is a Pearson correlation between two numeric columns.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// Describe computes per-column statistics, the top correlations among numeric
// columns and a few sample rows.
func Describe(t *Table, sampleRows int) *Summary {
	s := &Summary{Name: t.Name, Rows: t.NumRows(), Types: Classify(t)}
	for _, c := range t.Columns {
		s.Columns = append(s.Columns, describeColumn(c, t.NumRows()))
	}
	s.Corr = correlations(t)
	if sampleRows <= 0 {
		sampleRows = 5
	}
	for i := 0; i < t.NumRows() && i < sampleRows; i++ {
		s.Samples = append(s.Samples, t.Row(i))
	}
	return s
}

func describeColumn(c *Column, rows int) ColumnSummary {
	cs := ColumnSummary{Name: c.Name, Class: ClassOf(c, rows), Unique: c.Distinct()}
	for _, ok := range c.Valid {
		if ok {
			cs.NonNull++
		} else {
			cs.Missing++
		}
	}
	switch cs.Class {
	case ClassNumeric:
		vals := validNums(c)
		if len(vals) == 0 {
			break
		}
		sort.Float64s(vals)
		cs.Min, cs.Max = vals[0], vals[len(vals)-1]
		cs.Mean = stat.Mean(vals, nil)
		if len(vals) > 1 {
			cs.Std = stat.StdDev(vals, nil)
		}
		cs.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	case ClassDatetime:
		for i, ok := range c.Valid {
			if !ok {
				continue
			}
			tm := c.Times[i]
			if cs.First.IsZero() || tm.Before(cs.First) {
				cs.First = tm
			}
			if cs.Last.IsZero() || tm.After(cs.Last) {
				cs.Last = tm
			}
		}
	case ClassCategorical:
		cs.TopValues = topValues(c, 8)
	case ClassText:
		for i, ok := range c.Valid {
			if ok && len(cs.ExampleTexts) < 3 {
				cs.ExampleTexts = append(cs.ExampleTexts, c.Raw[i])
			}
		}
	}
	return cs
}

func validNums(c *Column) []float64 {
	out := make([]float64, 0, len(c.Nums))
	for i, ok := range c.Valid {
		if ok {
			out = append(out, c.Nums[i])
		}
	}
	return out
}

func topValues(c *Column, n int) []CategoryCount {
	counts := map[string]int{}
	for i, ok := range c.Valid {
		if ok {
			counts[c.Raw[i]]++
		}
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// correlations uses pairwise-complete rows for each numeric column pair.
func correlations(t *Table) []PairCorr {
	var nums []*Column
	for _, c := range t.Columns {
		if c.Kind == KindNumeric {
			nums = append(nums, c)
		}
	}
	var pairs []PairCorr
	for a := 0; a < len(nums); a++ {
		for b := a + 1; b < len(nums); b++ {
			var xs, ys []float64
			for i := 0; i < t.NumRows(); i++ {
				if nums[a].Valid[i] && nums[b].Valid[i] {
					xs = append(xs, nums[a].Nums[i])
					ys = append(ys, nums[b].Nums[i])
				}
			}
			if len(xs) < 3 {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				continue
			}
			pairs = append(pairs, PairCorr{A: nums[a].Name, B: nums[b].Name, R: r})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > 10 {
		pairs = pairs[:10]
	}
	return pairs
}

// Markdown renders the summary for terminals, docs or LLM prompts.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", s.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", s.Rows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(s.Columns))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Columns {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeVal(c.Name), c.Class, c.NonNull, missPct)
		switch c.Class {
		case ClassNumeric:
			fmt.Fprintf(&b, ": min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std)
		case ClassDatetime:
			if !c.First.IsZero() {
				fmt.Fprintf(&b, ": %s to %s", c.First.Format("2006-01-02"), c.Last.Format("2006-01-02"))
			}
		case ClassCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		case ClassText:
			if len(c.ExampleTexts) > 0 {
				b.WriteString(": e.g. ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(s.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range s.Corr {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
		}
	}
	if len(s.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range s.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(c.Name))
		}
		b.WriteString(" |\n|")
		for range s.Columns {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range s.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

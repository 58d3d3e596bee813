package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/insight"
)

const dateFormat = "2006-01-02"

// aggregate groups y by the raw text of x in first-appearance order.
func aggregate(t *dataset.Table, xName, yName, agg string) ([]string, []float64, error) {
	x, err := t.Lookup(xName)
	if err != nil {
		return nil, nil, err
	}
	agg = strings.ToLower(agg)
	if agg == "" {
		agg = "sum"
	}
	if agg != "sum" && agg != "mean" && agg != "count" {
		return nil, nil, fmt.Errorf("unsupported agg %q (use sum, mean or count)", agg)
	}
	var y *dataset.Column
	if agg != "count" {
		if y, err = numericColumn(t, yName); err != nil {
			return nil, nil, err
		}
	}
	idx := map[string]int{}
	var labels []string
	var sums []float64
	var counts []int
	for i := 0; i < t.NumRows(); i++ {
		if !x.Valid[i] {
			continue
		}
		var v float64
		if agg != "count" {
			var ok bool
			if v, ok = y.Float(i); !ok {
				continue
			}
		}
		k := x.Raw[i]
		j, seen := idx[k]
		if !seen {
			j = len(labels)
			idx[k] = j
			labels = append(labels, k)
			sums = append(sums, 0)
			counts = append(counts, 0)
		}
		sums[j] += v
		counts[j]++
	}
	if len(labels) == 0 {
		return nil, nil, errors.New("no rows with values to aggregate")
	}
	out := make([]float64, len(labels))
	for j := range labels {
		switch agg {
		case "sum":
			out[j] = sums[j]
		case "mean":
			out[j] = sums[j] / float64(counts[j])
		case "count":
			out[j] = float64(counts[j])
		}
	}
	return labels, out, nil
}

func barWidth(n int) int {
	w := 120 + n*60
	if w < defaultWidth {
		return defaultWidth
	}
	return w
}

func buildBar(t *dataset.Table, cfg Config) (renderable, error) {
	if cfg.str("agg") == "count" {
		if err := cfg.require("x"); err != nil {
			return nil, err
		}
	} else if err := cfg.require("x", "y"); err != nil {
		return nil, err
	}
	labels, vals, err := aggregate(t, cfg.str("x"), cfg.str("y"), cfg.str("agg"))
	if err != nil {
		return nil, err
	}
	bars := make([]gochart.Value, len(labels))
	for i := range labels {
		bars[i] = gochart.Value{Label: labels[i], Value: vals[i]}
	}
	return gochart.BarChart{
		Title:    cfg.str("title"),
		Width:    barWidth(len(bars)),
		Height:   defaultHeight,
		BarWidth: 40,
		XAxis:    gochart.Shown(),
		YAxis:    gochart.YAxis{Style: gochart.Shown(), Range: barRange(bars)},
		Bars:     bars,
	}, nil
}

// barRange anchors the value axis at zero with some headroom. go-chart
// refuses to scale bars that are all equal on its own.
func barRange(bars []gochart.Value) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo, hi = math.Min(lo, b.Value), math.Max(hi, b.Value)
	}
	if lo == hi {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if lo < 0 {
		lo -= pad
	}
	if hi > 0 {
		hi += pad
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// points holds one plotted series sorted by x.
type points struct {
	xs    []float64
	times []time.Time
	ys    []float64
	ticks []gochart.Tick
}

func (p points) series(name string, style gochart.Style) gochart.Series {
	if p.times != nil {
		return gochart.TimeSeries{Name: name, Style: style, XValues: p.times, YValues: p.ys}
	}
	return gochart.ContinuousSeries{Name: name, Style: style, XValues: p.xs, YValues: p.ys}
}

// collect pairs x and y for the given rows (nil means all rows). A string x
// column is aggregated with agg and plotted at positions 0..n-1.
func collect(t *dataset.Table, xName, yName, agg string, rows []int) (points, error) {
	x, err := t.Lookup(xName)
	if err != nil {
		return points{}, err
	}
	if x.Kind != dataset.KindNumeric && x.Kind != dataset.KindDatetime {
		labels, vals, err := aggregate(t, xName, yName, agg)
		if err != nil {
			return points{}, err
		}
		p := points{ys: vals}
		for i, l := range labels {
			p.xs = append(p.xs, float64(i))
			p.ticks = append(p.ticks, gochart.Tick{Value: float64(i), Label: l})
		}
		return p, nil
	}
	y, err := numericColumn(t, yName)
	if err != nil {
		return points{}, err
	}
	if rows == nil {
		rows = make([]int, t.NumRows())
		for i := range rows {
			rows[i] = i
		}
	}
	type pt struct {
		x, y float64
		t    time.Time
	}
	var pts []pt
	for _, i := range rows {
		xv, okx := x.Float(i)
		yv, oky := y.Float(i)
		if !okx || !oky {
			continue
		}
		tm, _ := x.Time(i)
		pts = append(pts, pt{x: xv, y: yv, t: tm})
	}
	if len(pts) == 0 {
		return points{}, fmt.Errorf("no rows with both %q and %q", xName, yName)
	}
	sort.SliceStable(pts, func(a, b int) bool { return pts[a].x < pts[b].x })
	var p points
	for _, q := range pts {
		p.xs = append(p.xs, q.x)
		p.ys = append(p.ys, q.y)
		if x.Kind == dataset.KindDatetime {
			p.times = append(p.times, q.t)
		}
	}
	return p, nil
}

func xyChart(cfg Config, p points, series ...gochart.Series) gochart.Chart {
	c := gochart.Chart{
		Title:  cfg.str("title"),
		Width:  defaultWidth,
		Height: defaultHeight,
		XAxis:  gochart.XAxis{Name: cfg.str("x"), Ticks: p.ticks},
		YAxis:  gochart.YAxis{Name: cfg.str("y")},
		Series: series,
	}
	if p.times != nil {
		c.XAxis.ValueFormatter = gochart.TimeValueFormatterWithFormat(dateFormat)
	}
	padAxes(&c, p.times != nil)
	return c
}

// padAxes gives explicit ranges to axes whose values collapse to a single
// point, such as a one-row dataset or a flat series; go-chart cannot scale
// a zero-width range.
func padAxes(c *gochart.Chart, timeAxis bool) {
	minx, maxx := math.Inf(1), math.Inf(-1)
	miny, maxy := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		vp, ok := s.(gochart.ValuesProvider)
		if !ok {
			continue
		}
		for i := 0; i < vp.Len(); i++ {
			x, y := vp.GetValues(i)
			minx, maxx = math.Min(minx, x), math.Max(maxx, x)
			miny, maxy = math.Min(miny, y), math.Max(maxy, y)
		}
	}
	if math.IsInf(minx, 1) {
		return
	}
	switch {
	case len(c.XAxis.Ticks) == 1:
		v := c.XAxis.Ticks[0].Value
		c.XAxis.Ticks = []gochart.Tick{{Value: v - 0.5}, c.XAxis.Ticks[0], {Value: v + 0.5}}
	case len(c.XAxis.Ticks) == 0 && minx == maxx:
		pad := 1.0
		if timeAxis {
			pad = float64(12 * time.Hour)
		}
		c.XAxis.Range = &gochart.ContinuousRange{Min: minx - pad, Max: maxx + pad}
	}
	if miny == maxy {
		pad := math.Max(math.Abs(miny)*0.1, 1)
		c.YAxis.Range = &gochart.ContinuousRange{Min: miny - pad, Max: maxy + pad}
	}
}

func buildLine(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("x", "y"); err != nil {
		return nil, err
	}
	p, err := collect(t, cfg.str("x"), cfg.str("y"), orDefault(cfg.str("agg"), "mean"), nil)
	if err != nil {
		return nil, err
	}
	style := gochart.Style{StrokeColor: gochart.GetDefaultColor(0), StrokeWidth: 2}
	return xyChart(cfg, p, p.series(cfg.str("y"), style)), nil
}

func buildArea(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("x", "y"); err != nil {
		return nil, err
	}
	p, err := collect(t, cfg.str("x"), cfg.str("y"), orDefault(cfg.str("agg"), "sum"), nil)
	if err != nil {
		return nil, err
	}
	color := gochart.GetDefaultColor(0)
	style := gochart.Style{StrokeColor: color, StrokeWidth: 2, FillColor: color.WithAlpha(64)}
	return xyChart(cfg, p, p.series(cfg.str("y"), style)), nil
}

func buildTimeSeries(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("x", "y"); err != nil {
		return nil, err
	}
	x, err := t.Lookup(cfg.str("x"))
	if err != nil {
		return nil, err
	}
	if x.Kind != dataset.KindDatetime {
		return nil, fmt.Errorf("%w: %q is %s, need datetime", ErrColumnKind, x.Name, x.Kind)
	}
	p, err := collect(t, x.Name, cfg.str("y"), "", nil)
	if err != nil {
		return nil, err
	}
	style := gochart.Style{StrokeColor: drawing.ColorFromHex("1f77b4"), StrokeWidth: 2, DotWidth: 2, DotColor: drawing.ColorFromHex("1f77b4")}
	return xyChart(cfg, p, p.series(cfg.str("y"), style)), nil
}

func dotStyle(i int) gochart.Style {
	return gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 4, DotColor: gochart.GetDefaultColor(i)}
}

func buildScatter(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("x", "y"); err != nil {
		return nil, err
	}
	if _, err := axisColumn(t, cfg.str("x")); err != nil {
		return nil, err
	}
	groupBy := cfg.str("color")
	if groupBy == "" {
		p, err := collect(t, cfg.str("x"), cfg.str("y"), "", nil)
		if err != nil {
			return nil, err
		}
		return xyChart(cfg, p, p.series(cfg.str("y"), dotStyle(0))), nil
	}
	g, err := t.Lookup(groupBy)
	if err != nil {
		return nil, err
	}
	groups := map[string][]int{}
	var order []string
	for i := 0; i < t.NumRows(); i++ {
		k := g.Raw[i]
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	var series []gochart.Series
	var first points
	for i, k := range order {
		p, err := collect(t, cfg.str("x"), cfg.str("y"), "", groups[k])
		if err != nil {
			continue
		}
		if series == nil {
			first = p
		}
		series = append(series, p.series(orDefault(k, "(empty)"), dotStyle(i)))
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no rows with both %q and %q", cfg.str("x"), cfg.str("y"))
	}
	c := xyChart(cfg, first, series...)
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return c, nil
}

func buildClusterScatter(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("x", "y"); err != nil {
		return nil, err
	}
	k := cfg.int("k", 3)
	res, err := insight.KMeans(t, []string{cfg.str("x"), cfg.str("y")}, k)
	if err != nil {
		return nil, err
	}
	byLabel := make([][]int, len(res.Centers))
	for row, l := range res.Labels {
		if l >= 0 {
			byLabel[l] = append(byLabel[l], row)
		}
	}
	var series []gochart.Series
	var first points
	for l, rows := range byLabel {
		p, err := collect(t, cfg.str("x"), cfg.str("y"), "", rows)
		if err != nil {
			continue
		}
		if series == nil {
			first = p
		}
		series = append(series, p.series(fmt.Sprintf("cluster %d (n=%d)", l, res.Sizes[l]), dotStyle(l)))
	}
	centers := gochart.ContinuousSeries{
		Name:  "centers",
		Style: gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 8, DotColor: drawing.ColorBlack},
	}
	for _, c := range res.Centers {
		centers.XValues = append(centers.XValues, c[0])
		centers.YValues = append(centers.YValues, c[1])
	}
	series = append(series, centers)
	c := xyChart(cfg, first, series...)
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return c, nil
}

func sliceValues(t *dataset.Table, cfg Config) ([]gochart.Value, error) {
	if err := cfg.require("names", "values"); err != nil {
		return nil, err
	}
	labels, vals, err := aggregate(t, cfg.str("names"), cfg.str("values"), cfg.str("agg"))
	if err != nil {
		return nil, err
	}
	var out []gochart.Value
	for i := range labels {
		if vals[i] > 0 {
			out = append(out, gochart.Value{Label: fmt.Sprintf("%s (%.4g)", labels[i], vals[i]), Value: vals[i]})
		}
	}
	if len(out) == 0 {
		return nil, errors.New("pie and donut charts need at least one positive value")
	}
	return out, nil
}

func buildPie(t *dataset.Table, cfg Config) (renderable, error) {
	vals, err := sliceValues(t, cfg)
	if err != nil {
		return nil, err
	}
	return gochart.PieChart{Title: cfg.str("title"), Width: defaultHeight, Height: defaultHeight, Values: vals}, nil
}

func buildDonut(t *dataset.Table, cfg Config) (renderable, error) {
	vals, err := sliceValues(t, cfg)
	if err != nil {
		return nil, err
	}
	return gochart.DonutChart{Title: cfg.str("title"), Width: defaultHeight, Height: defaultHeight, Values: vals}, nil
}

// Histogram splits [min, max] into equal-width bins; the last bin is closed.
func Histogram(vals []float64, bins int) (edges []float64, counts []int) {
	if len(vals) == 0 || bins < 1 {
		return nil, nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		return []float64{lo, hi}, []int{len(vals)}
	}
	width := (hi - lo) / float64(bins)
	edges = make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	counts = make([]int, bins)
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return edges, counts
}

func buildHistogram(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("column"); err != nil {
		return nil, err
	}
	c, err := numericColumn(t, cfg.str("column"))
	if err != nil {
		return nil, err
	}
	bins := cfg.int("bins", 10)
	if bins < 1 || bins > 100 {
		return nil, fmt.Errorf("bins must be between 1 and 100, got %d", bins)
	}
	var vals []float64
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("column %q has no values", c.Name)
	}
	edges, counts := Histogram(vals, bins)
	bars := make([]gochart.Value, len(counts))
	for i := range counts {
		bars[i] = gochart.Value{Label: fmt.Sprintf("%.4g-%.4g", edges[i], edges[i+1]), Value: float64(counts[i])}
	}
	return gochart.BarChart{
		Title:    orDefault(cfg.str("title"), "Distribution of "+c.Name),
		Width:    barWidth(len(bars)),
		Height:   defaultHeight,
		BarWidth: 40,
		XAxis:    gochart.Shown(),
		YAxis:    gochart.YAxis{Style: gochart.Shown(), Range: barRange(bars)},
		Bars:     bars,
	}, nil
}

func buildStackedBar(t *dataset.Table, cfg Config) (renderable, error) {
	if err := cfg.require("x", "ys"); err != nil {
		return nil, err
	}
	ys := cfg.strs("ys")
	var labels []string
	totals := map[string][]float64{}
	for j, y := range ys {
		l, vals, err := aggregate(t, cfg.str("x"), y, "sum")
		if err != nil {
			return nil, err
		}
		for _, label := range l {
			if _, ok := totals[label]; !ok {
				labels = append(labels, label)
				totals[label] = make([]float64, len(ys))
			}
		}
		for i, label := range l {
			totals[label][j] = vals[i]
		}
	}
	bars := make([]gochart.StackedBar, 0, len(labels))
	for _, label := range labels {
		sb := gochart.StackedBar{Name: label}
		for j, y := range ys {
			v := totals[label][j]
			if v < 0 {
				return nil, fmt.Errorf("stacked bars need non-negative values; %q has %.4g for %q", y, v, label)
			}
			sb.Values = append(sb.Values, gochart.Value{
				Label: y,
				Value: v,
				Style: gochart.Style{FillColor: gochart.GetDefaultColor(j), StrokeColor: gochart.GetDefaultColor(j)},
			})
		}
		bars = append(bars, sb)
	}
	return gochart.StackedBarChart{
		Title:  cfg.str("title"),
		Width:  barWidth(len(bars)),
		Height: defaultHeight,
		XAxis:  gochart.Shown(),
		YAxis:  gochart.Shown(),
		Bars:   bars,
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

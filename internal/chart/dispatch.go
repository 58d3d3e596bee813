package chart

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

const (
	defaultWidth  = 900
	defaultHeight = 500
)

var (
	// ErrUnknownType is carried by placeholders for unsupported chart tags.
	ErrUnknownType = errors.New("unknown chart type")
	// ErrMissingKey is carried by placeholders when a required key is absent.
	ErrMissingKey = errors.New("missing chart option")
	// ErrColumnKind is carried when a column cannot feed the requested axis.
	ErrColumnKind = errors.New("column kind not supported for this chart")
)

// Config is the loosely typed option set of a chart request.
type Config map[string]any

func (c Config) str(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (c Config) require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !c.present(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}
	return nil
}

// present reports whether key holds a non-blank value; lists must have at
// least one non-blank entry.
func (c Config) present(key string) bool {
	switch c[key].(type) {
	case []string, []any:
		return len(c.strs(key)) > 0
	}
	return c.str(key) != ""
}

// strs reads a list option given as a JSON array or a comma-separated string.
// Blank and repeated entries are dropped.
func (c Config) strs(key string) []string {
	var raw []string
	switch v := c[key].(type) {
	case []string:
		raw = v
	case []any:
		for _, e := range v {
			if e != nil {
				raw = append(raw, fmt.Sprint(e))
			}
		}
	case string:
		raw = strings.Split(v, ",")
	default:
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func (c Config) int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

type builder func(t *dataset.Table, cfg Config) (renderable, error)

var builders = map[string]builder{
	"bar":             buildBar,
	"line":            buildLine,
	"area":            buildArea,
	"scatter":         buildScatter,
	"pie":             buildPie,
	"donut":           buildDonut,
	"histogram":       buildHistogram,
	"stacked_bar":     buildStackedBar,
	"time_series":     buildTimeSeries,
	"cluster_scatter": buildClusterScatter,
}

// Types lists the supported chart tags in sorted order.
func Types() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dispatch builds the figure for chartType. It never fails: invalid requests
// yield a placeholder figure whose Err says what was wrong.
func Dispatch(t *dataset.Table, chartType string, cfg Config) (fig *Figure) {
	kind := strings.ToLower(strings.TrimSpace(chartType))
	title := cfg.str("title")
	defer func() {
		if r := recover(); r != nil {
			fig = placeholder(kind, title, fmt.Errorf("build %s chart: %v", kind, r))
		}
	}()
	build, ok := builders[kind]
	if !ok {
		return placeholder(kind, title, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownType, chartType, strings.Join(Types(), ", ")))
	}
	if t == nil || t.NumRows() == 0 {
		return placeholder(kind, title, errors.New("no data to plot"))
	}
	if cfg == nil {
		cfg = Config{}
	}
	r, err := build(t, cfg)
	if err != nil {
		return placeholder(kind, title, err)
	}
	return &Figure{Type: kind, Title: title, chart: r}
}

func numericColumn(t *dataset.Table, name string) (*dataset.Column, error) {
	c, err := t.Lookup(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s, need numeric", ErrColumnKind, name, c.Kind)
	}
	return c, nil
}

func axisColumn(t *dataset.Table, name string) (*dataset.Column, error) {
	c, err := t.Lookup(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != dataset.KindNumeric && c.Kind != dataset.KindDatetime {
		return nil, fmt.Errorf("%w: %q is %s, need numeric or datetime", ErrColumnKind, name, c.Kind)
	}
	return c, nil
}

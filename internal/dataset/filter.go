package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrFilterShape is returned when a condition does not fit its column's kind.
var ErrFilterShape = errors.New("filter does not fit column")

// Condition is a predicate over one column's cells.
type Condition interface {
	check(c *Column) error
	match(c *Column, row int) bool
}

// Range keeps rows whose value is within [Lo, Hi]. Datetime columns compare
// in Unix seconds; see Between.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Between builds a Range over a datetime column.
func Between(from, to time.Time) Range {
	return Range{Lo: float64(from.Unix()), Hi: float64(to.Unix())}
}

func (r Range) check(c *Column) error {
	if c.Kind != KindNumeric && c.Kind != KindDatetime {
		return fmt.Errorf("%w: range on %s column %q", ErrFilterShape, c.Kind, c.Name)
	}
	return nil
}

func (r Range) match(c *Column, row int) bool {
	v, ok := c.Float(row)
	return ok && v >= r.Lo && v <= r.Hi
}

// OneOf keeps rows whose cell text is one of Values.
type OneOf struct {
	Values []string `json:"values"`
}

func (o OneOf) check(*Column) error { return nil }

func (o OneOf) match(c *Column, row int) bool {
	cell := c.Raw[row]
	for _, v := range o.Values {
		if cellEquals(c, row, cell, v) {
			return true
		}
	}
	return false
}

// Equals keeps rows whose cell equals Value.
type Equals struct {
	Value string `json:"value"`
}

func (e Equals) check(*Column) error { return nil }

func (e Equals) match(c *Column, row int) bool {
	return cellEquals(c, row, c.Raw[row], e.Value)
}

// cellEquals compares numerically on numeric columns ("5" matches "5.0"),
// case-insensitively on bools and exactly otherwise.
func cellEquals(c *Column, row int, cell, want string) bool {
	switch c.Kind {
	case KindNumeric:
		if !c.Valid[row] {
			return want == ""
		}
		if x, err := strconv.ParseFloat(strings.TrimSpace(want), 64); err == nil {
			return math.Abs(c.Nums[row]-x) < 1e-9
		}
	case KindBool:
		return strings.EqualFold(cell, strings.TrimSpace(want))
	}
	return cell == want
}

// Filters maps column names to conditions. All conditions must hold.
type Filters map[string]Condition

// Apply returns the rows of t satisfying every filter. Filters on columns
// that t does not have are ignored; an empty filter set returns t itself.
func Apply(t *Table, f Filters) (*Table, error) {
	if t == nil || len(f) == 0 {
		return t, nil
	}
	type bound struct {
		col  *Column
		cond Condition
	}
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	var active []bound
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok || f[name] == nil {
			continue
		}
		if err := f[name].check(c); err != nil {
			return nil, err
		}
		active = append(active, bound{col: c, cond: f[name]})
	}
	if len(active) == 0 {
		return t, nil
	}
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		ok := true
		for _, b := range active {
			if !b.cond.match(b.col, i) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return t.Select(keep), nil
}

// ParseFilters converts loosely typed filters (JSON bodies, YAML layouts) into
// conditions: a two-number list or {min,max} map is a Range, a two-date list
// is a datetime Range, any other list is OneOf and a scalar is Equals.
func ParseFilters(raw map[string]any) (Filters, error) {
	out := Filters{}
	for name, v := range raw {
		cond, err := parseCondition(v)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
		if cond != nil {
			out[name] = cond
		}
	}
	return out, nil
}

func parseCondition(v any) (Condition, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Condition:
		return x, nil
	case map[string]any:
		lo, okLo := x["min"]
		hi, okHi := x["max"]
		if !okLo && !okHi {
			if vals, ok := x["values"]; ok {
				return parseCondition(vals)
			}
			return nil, fmt.Errorf("%w: map filter needs min/max or values", ErrFilterShape)
		}
		r := Range{Lo: math.Inf(-1), Hi: math.Inf(1)}
		if okLo {
			f, ok := toFloat(lo)
			if !ok {
				t, ok := toTime(lo)
				if !ok {
					return nil, fmt.Errorf("%w: min %v is not a number or date", ErrFilterShape, lo)
				}
				f = float64(t.Unix())
			}
			r.Lo = f
		}
		if okHi {
			f, ok := toFloat(hi)
			if !ok {
				t, ok := toTime(hi)
				if !ok {
					return nil, fmt.Errorf("%w: max %v is not a number or date", ErrFilterShape, hi)
				}
				f = float64(t.Unix())
			}
			r.Hi = f
		}
		return r, nil
	case []any:
		if len(x) == 2 {
			a, okA := toFloat(x[0])
			b, okB := toFloat(x[1])
			if okA && okB {
				return Range{Lo: a, Hi: b}, nil
			}
			ta, okA := toTime(x[0])
			tb, okB := toTime(x[1])
			if okA && okB {
				return Between(ta, tb), nil
			}
		}
		vals := make([]string, len(x))
		for i, e := range x {
			vals[i] = formatValue(e)
		}
		return OneOf{Values: vals}, nil
	case []string:
		return OneOf{Values: append([]string(nil), x...)}, nil
	case []float64:
		if len(x) == 2 {
			return Range{Lo: x[0], Hi: x[1]}, nil
		}
		vals := make([]string, len(x))
		for i, e := range x {
			vals[i] = formatValue(e)
		}
		return OneOf{Values: vals}, nil
	default:
		return Equals{Value: formatValue(x)}, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return parseTimeMaybe(strings.TrimSpace(x))
	}
	return time.Time{}, false
}

package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the storage kind inferred for a column when a table is built.
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindDatetime Kind = "datetime"
	KindBool     Kind = "bool"
	KindString   Kind = "string"
)

// ErrUnknownColumn is returned when a named column is not part of a table.
var ErrUnknownColumn = errors.New("unknown column")

// Column holds the raw cell text plus the parsed values for its kind.
// Valid[i] is false for empty cells.
type Column struct {
	Name  string
	Kind  Kind
	Raw   []string
	Nums  []float64
	Times []time.Time
	Valid []bool
}

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.Raw) }

// Float returns the numeric value of row i. For datetime columns it is the
// Unix time in seconds so that ranges and scatter axes work on both kinds.
func (c *Column) Float(i int) (float64, bool) {
	if i < 0 || i >= len(c.Raw) || !c.Valid[i] {
		return 0, false
	}
	switch c.Kind {
	case KindNumeric:
		return c.Nums[i], true
	case KindDatetime:
		return float64(c.Times[i].Unix()), true
	}
	return 0, false
}

// Time returns the parsed time of row i for datetime columns.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Kind != KindDatetime || i < 0 || i >= len(c.Raw) || !c.Valid[i] {
		return time.Time{}, false
	}
	return c.Times[i], true
}

// Distinct counts distinct non-empty values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{}, len(c.Raw))
	for i, v := range c.Raw {
		if c.Valid[i] {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// Table is an in-memory, column-oriented dataset.
type Table struct {
	Name    string
	Columns []*Column
	index   map[string]int
}

// NumRows returns the row count (0 for a table without columns).
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// Lookup is Column with an ErrUnknownColumn error for callers that need one.
func (t *Table) Lookup(name string) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return c, nil
}

// Row returns the raw cells of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Raw[i]
	}
	return out
}

// Select returns a new table made of the given rows, in the given order.
// Column kinds are preserved.
func (t *Table) Select(rows []int) *Table {
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for j, c := range t.Columns {
		nc := &Column{
			Name:  c.Name,
			Kind:  c.Kind,
			Raw:   make([]string, len(rows)),
			Valid: make([]bool, len(rows)),
		}
		if c.Nums != nil {
			nc.Nums = make([]float64, len(rows))
		}
		if c.Times != nil {
			nc.Times = make([]time.Time, len(rows))
		}
		for k, r := range rows {
			nc.Raw[k] = c.Raw[r]
			nc.Valid[k] = c.Valid[r]
			if c.Nums != nil {
				nc.Nums[k] = c.Nums[r]
			}
			if c.Times != nil {
				nc.Times[k] = c.Times[r]
			}
		}
		out.Columns[j] = nc
	}
	out.reindex()
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := t.index[c.Name]; !dup {
			t.index[c.Name] = i
		}
	}
}

// FromRecords builds a table from a header and string rows, inferring each
// column's kind. Short rows are padded with empty cells; extra cells are dropped.
func FromRecords(name string, header []string, rows [][]string, opt Options) *Table {
	t := &Table{Name: name, Columns: make([]*Column, len(header))}
	for j, h := range header {
		raw := make([]string, len(rows))
		for i, r := range rows {
			if j < len(r) {
				raw[i] = strings.TrimSpace(r[j])
			}
		}
		t.Columns[j] = buildColumn(columnName(h, j), raw, opt)
	}
	t.reindex()
	return t
}

// FromValues builds a table from typed Go values (numbers, times, bools,
// strings, nil). Used to expose stored records as datasets.
func FromValues(name string, header []string, rows [][]any) *Table {
	str := make([][]string, len(rows))
	for i, r := range rows {
		str[i] = make([]string, len(r))
		for j, v := range r {
			str[i][j] = formatValue(v)
		}
	}
	return FromRecords(name, header, str, Options{DecimalSeparator: '.'})
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func columnName(h string, j int) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	if h == "" {
		return fmt.Sprintf("column_%d", j+1)
	}
	return h
}

// buildColumn infers the column kind: numeric if every non-empty cell parses
// as a number, else datetime, else bool, else string. An all-empty column is
// a string column.
func buildColumn(name string, raw []string, opt Options) *Column {
	c := &Column{Name: name, Kind: KindString, Raw: raw, Valid: make([]bool, len(raw))}
	nonEmpty := 0
	for i, v := range raw {
		if v != "" {
			c.Valid[i] = true
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return c
	}
	nums := make([]float64, len(raw))
	allNum := true
	for i, v := range raw {
		if !c.Valid[i] {
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			allNum = false
			break
		}
		nums[i] = x
	}
	if allNum {
		c.Kind, c.Nums = KindNumeric, nums
		return c
	}
	times := make([]time.Time, len(raw))
	allTime := true
	for i, v := range raw {
		if !c.Valid[i] {
			continue
		}
		tm, ok := parseTimeMaybe(v)
		if !ok {
			allTime = false
			break
		}
		times[i] = tm
	}
	if allTime {
		c.Kind, c.Times = KindDatetime, times
		return c
	}
	allBool := true
	for i, v := range raw {
		if c.Valid[i] && !isBool(v) {
			allBool = false
			break
		}
	}
	if allBool {
		c.Kind = KindBool
	}
	return c
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

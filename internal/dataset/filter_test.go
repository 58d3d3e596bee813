package dataset

import (
	"errors"
	"testing"
)

func TestApplyEmptyFiltersReturnsInput(t *testing.T) {
	tbl := loadStays(t)
	out, err := Apply(tbl, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != tbl {
		t.Fatalf("expected the same table back")
	}
	out, err = Apply(tbl, Filters{"missing_column": Equals{Value: "x"}})
	if err != nil || out.NumRows() != tbl.NumRows() {
		t.Fatalf("unknown column filter must be ignored: rows=%d err=%v", out.NumRows(), err)
	}
}

func TestApplyRangeIsInclusive(t *testing.T) {
	tbl := loadStays(t)
	out, err := Apply(tbl, Filters{"price": Range{Lo: 100, Hi: 160}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NumRows() != 5 {
		t.Fatalf("rows = %d, want 5", out.NumRows())
	}
	price, _ := out.Column("price")
	for i := 0; i < out.NumRows(); i++ {
		v, ok := price.Float(i)
		if !ok || v < 100 || v > 160 {
			t.Fatalf("row %d price %v escaped the range", i, v)
		}
	}
	if out.Columns[0].Kind != KindString || price.Kind != KindNumeric {
		t.Fatalf("kinds not preserved")
	}
}

func TestApplyCombinesWithAnd(t *testing.T) {
	out, err := Apply(loadStays(t), Filters{
		"price":    Range{Lo: 100, Hi: 200},
		"property": OneOf{Values: []string{"Villa Rosa"}},
		"guests":   Equals{Value: "3.0"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
}

func TestApplyRangeOnTextColumnIsRejected(t *testing.T) {
	_, err := Apply(loadStays(t), Filters{"source": Range{Lo: 0, Hi: 1}})
	if !errors.Is(err, ErrFilterShape) {
		t.Fatalf("expected ErrFilterShape, got %v", err)
	}
}

func TestParseFilters(t *testing.T) {
	f, err := ParseFilters(map[string]any{
		"price":  []any{90.0, 130},
		"source": []any{"airbnb", "direct"},
		"booked": true,
		"date":   []any{"2024-06-03", "2024-06-05"},
		"guests": map[string]any{"min": 2},
		"ignore": nil,
	})
	if err != nil {
		t.Fatalf("ParseFilters: %v", err)
	}
	if _, ok := f["price"].(Range); !ok {
		t.Fatalf("price: %T", f["price"])
	}
	if _, ok := f["source"].(OneOf); !ok {
		t.Fatalf("source: %T", f["source"])
	}
	if eq, ok := f["booked"].(Equals); !ok || eq.Value != "true" {
		t.Fatalf("booked: %#v", f["booked"])
	}
	if _, ok := f["ignore"]; ok {
		t.Fatalf("nil filters must be dropped")
	}

	out, err := Apply(loadStays(t), Filters{"date": f["date"]})
	if err != nil {
		t.Fatalf("Apply date: %v", err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("date rows = %d, want 3", out.NumRows())
	}

	out, err = Apply(loadStays(t), f)
	if err != nil {
		t.Fatalf("Apply all: %v", err)
	}
	// 2024-06-03..05 with price in [90,130], source airbnb/direct, booked, guests >= 2
	if out.NumRows() != 1 {
		t.Fatalf("rows = %d, want 1", out.NumRows())
	}
	notes, _ := out.Column("notes")
	if notes.Raw[0] != "Brings a dog" {
		t.Fatalf("unexpected row %v", out.Row(0))
	}

	if _, err := ParseFilters(map[string]any{"x": map[string]any{"other": 1}}); !errors.Is(err, ErrFilterShape) {
		t.Fatalf("expected ErrFilterShape, got %v", err)
	}
}

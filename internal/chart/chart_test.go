package chart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

func nights() *dataset.Table {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	var rows [][]any
	props := []string{"Villa Rosa", "Casa Blu", "Loft Navigli"}
	for i := 0; i < 30; i++ {
		p := props[i%3]
		base := map[string]float64{"Villa Rosa": 300, "Casa Blu": 110, "Loft Navigli": 140}[p]
		price := base + float64(i%7)*4
		guests := 2 + i%3*2
		rows = append(rows, []any{start.AddDate(0, 0, i), p, price, guests, price * 0.15})
	}
	return dataset.FromValues("nights", []string{"date", "property", "price", "guests", "fees"}, rows)
}

func TestDispatchRendersEverySupportedType(t *testing.T) {
	tbl := nights()
	cases := map[string]Config{
		"bar":             {"x": "property", "y": "price", "agg": "mean"},
		"line":            {"x": "date", "y": "price"},
		"area":            {"x": "property", "y": "price"},
		"scatter":         {"x": "guests", "y": "price", "color": "property"},
		"pie":             {"names": "property", "values": "price"},
		"donut":           {"names": "property", "values": "guests", "agg": "count"},
		"histogram":       {"column": "price", "bins": 5},
		"stacked_bar":     {"x": "property", "ys": []any{"price", "fees"}},
		"time_series":     {"x": "date", "y": "price", "title": "Nightly rate"},
		"cluster_scatter": {"x": "guests", "y": "price", "k": 3},
	}
	if len(cases) != len(Types()) {
		t.Fatalf("test covers %d types, dispatcher has %d", len(cases), len(Types()))
	}
	for kind, cfg := range cases {
		fig := Dispatch(tbl, kind, cfg)
		if fig.Placeholder() {
			t.Fatalf("%s: unexpected placeholder: %v", kind, fig.Err)
		}
		png, err := fig.Bytes(PNG)
		if err != nil {
			t.Fatalf("%s: render png: %v", kind, err)
		}
		if !bytes.HasPrefix(png, []byte("\x89PNG")) {
			t.Fatalf("%s: not a png", kind)
		}
		if fig.Placeholder() {
			t.Fatalf("%s: render fell back to placeholder: %v", kind, fig.Err)
		}
	}
}

func TestDispatchPlaceholders(t *testing.T) {
	tbl := nights()
	cases := []struct {
		name  string
		kind  string
		cfg   Config
		table *dataset.Table
		want  error
	}{
		{"missing key", "bar", Config{"x": "property"}, tbl, ErrMissingKey},
		{"unknown type", "sunburst", Config{}, tbl, ErrUnknownType},
		{"unknown column", "line", Config{"x": "date", "y": "revenue"}, tbl, dataset.ErrUnknownColumn},
		{"wrong kind", "histogram", Config{"column": "property"}, tbl, ErrColumnKind},
		{"time series on numbers", "time_series", Config{"x": "guests", "y": "price"}, tbl, ErrColumnKind},
		{"nil config", "pie", nil, tbl, ErrMissingKey},
		{"empty table", "bar", Config{"x": "a", "y": "b"}, &dataset.Table{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fig := Dispatch(tc.table, tc.kind, tc.cfg)
			if !fig.Placeholder() {
				t.Fatalf("expected placeholder")
			}
			if tc.want != nil && !errors.Is(fig.Err, tc.want) {
				t.Fatalf("err = %v, want %v", fig.Err, tc.want)
			}
			svg, err := fig.Bytes(SVG)
			if err != nil {
				t.Fatalf("placeholder must render: %v", err)
			}
			if !bytes.Contains(svg, []byte("<svg")) {
				t.Fatalf("placeholder is not svg")
			}
		})
	}
}

func TestDispatchRendersDegenerateData(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	flat := dataset.FromValues("flat", []string{"city", "price"}, [][]any{
		{"Rome", 100.0}, {"Rome", 50.0}, {"Milan", 100.0}, {"Milan", 50.0},
	})
	single := dataset.FromValues("single", []string{"date", "city", "guests", "price"}, [][]any{
		{day, "Como", 4, 180.0},
	})
	cases := []struct {
		name  string
		table *dataset.Table
		kind  string
		cfg   Config
	}{
		{"equal bars", flat, "bar", Config{"x": "city", "y": "price", "agg": "mean"}},
		{"equal histogram bins", flat, "histogram", Config{"column": "price", "bins": 2}},
		{"single category", single, "bar", Config{"x": "city", "y": "price"}},
		{"single row line", single, "line", Config{"x": "guests", "y": "price"}},
		{"single row area", single, "area", Config{"x": "city", "y": "price"}},
		{"single row scatter", single, "scatter", Config{"x": "guests", "y": "price"}},
		{"single row time series", single, "time_series", Config{"x": "date", "y": "price"}},
		{"flat line over categories", flat, "line", Config{"x": "city", "y": "price", "agg": "mean"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fig := Dispatch(tc.table, tc.kind, tc.cfg)
			if fig.Placeholder() {
				t.Fatalf("unexpected placeholder: %v", fig.Err)
			}
			for _, f := range []Format{PNG, SVG} {
				if _, err := fig.Bytes(f); err != nil {
					t.Fatalf("render %s: %v", f, err)
				}
				if fig.Placeholder() {
					t.Fatalf("render %s fell back to placeholder: %v", f, fig.Err)
				}
			}
		})
	}
}

func TestStackedBarListOptions(t *testing.T) {
	tbl := nights()
	for _, ys := range []any{[]any{}, []any{" ", nil}, ""} {
		fig := Dispatch(tbl, "stacked_bar", Config{"x": "property", "ys": ys})
		if !errors.Is(fig.Err, ErrMissingKey) {
			t.Fatalf("ys=%#v: err = %v, want missing key", ys, fig.Err)
		}
	}
	if got := (Config{"ys": []any{"price", "fees", "price"}}).strs("ys"); len(got) != 2 || got[0] != "price" || got[1] != "fees" {
		t.Fatalf("strs = %v", got)
	}
	fig := Dispatch(tbl, "stacked_bar", Config{"x": "property", "ys": "price, fees, price"})
	if fig.Placeholder() {
		t.Fatalf("unexpected placeholder: %v", fig.Err)
	}
	if _, err := fig.Bytes(SVG); err != nil || fig.Placeholder() {
		t.Fatalf("render: %v %v", err, fig.Err)
	}
}

func TestDispatchNilTableDoesNotPanic(t *testing.T) {
	fig := Dispatch(nil, "scatter", Config{"x": "a", "y": "b"})
	if !fig.Placeholder() {
		t.Fatalf("expected placeholder")
	}
}

func TestHistogramBins(t *testing.T) {
	edges, counts := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}, 5)
	if len(edges) != 6 || edges[0] != 0 || edges[5] != 10 {
		t.Fatalf("edges = %v", edges)
	}
	want := []int{2, 2, 2, 2, 2}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("counts = %v, want %v", counts, want)
		}
	}
	_, counts = Histogram([]float64{3, 3, 3}, 4)
	if len(counts) != 1 || counts[0] != 3 {
		t.Fatalf("constant input counts = %v", counts)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("SVG"); err != nil || f != SVG || f.ContentType() != "image/svg+xml" {
		t.Fatalf("svg: %v %v", f, err)
	}
	if f, _ := ParseFormat(""); f != PNG {
		t.Fatalf("default format = %v", f)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
}

package dataset

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var stayRows = []string{
	"property;date;price;guests;source;booked;notes",
	"Villa Rosa;2024-06-01;120,50;2;airbnb;true;Late arrival expected",
	"Villa Rosa;2024-06-02;130,00;3;direct;false;Needs crib",
	"Casa Blu;2024-06-03;95,00;2;booking;true;Anniversary trip",
	"Casa Blu;2024-06-04;99,90;4;airbnb;true;Brings a dog",
	"Villa Rosa;2024-06-05;150,00;5;direct;false;Asked for parking",
	"Casa Blu;2024-06-06;;2;airbnb;false;Vegetarian breakfast",
	"Villa Rosa;2024-06-07;180,25;6;booking;true;Wedding guests",
	"Casa Blu;2024-06-08;101,00;1;direct;true;Business trip",
	"Villa Rosa;2024-06-09;175,00;4;airbnb;false;Early check-in",
	"Casa Blu;2024-06-10;88,00;2;booking;true;Honeymoon",
	"Villa Rosa;2024-06-11;160,00;3;airbnb;true;Family with teens",
	"Casa Blu;2024-06-12;92,50;2;direct;false;Cyclists",
}

func loadStays(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stays.csv")
	if err := os.WriteFile(path, []byte(strings.Join(stayRows, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	tbl, err := LoadCSV(path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	return tbl
}

func TestLoadCSVInfersKinds(t *testing.T) {
	tbl := loadStays(t)
	if tbl.Name != "stays.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.NumRows() != 12 || len(tbl.Columns) != 7 {
		t.Fatalf("shape = %dx%d", tbl.NumRows(), len(tbl.Columns))
	}
	want := map[string]Kind{
		"property": KindString,
		"date":     KindDatetime,
		"price":    KindNumeric,
		"guests":   KindNumeric,
		"source":   KindString,
		"booked":   KindBool,
		"notes":    KindString,
	}
	for name, kind := range want {
		c, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("missing column %s", name)
		}
		if c.Kind != kind {
			t.Fatalf("%s kind = %s, want %s", name, c.Kind, kind)
		}
	}
	price, _ := tbl.Column("price")
	if v, ok := price.Float(0); !ok || v != 120.5 {
		t.Fatalf("price[0] = %v %v, want 120.5", v, ok)
	}
	if _, ok := price.Float(5); ok {
		t.Fatalf("empty price cell must be missing")
	}
	date, _ := tbl.Column("date")
	if tm, ok := date.Time(2); !ok || !tm.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date[2] = %v", tm)
	}
}

func TestParseNumericLocales(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"12.5", Options{}, 12.5, true},
		{"12,5", Options{}, 12.5, true},
		{"1.000,25", Options{}, 1000.25, true},
		{"1,000.25", Options{}, 1000.25, true},
		{"1.000,0", Options{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1000, true},
		{"45%", Options{}, 45, true},
		{"-3e2", Options{}, -300, true},
		{"NaN", Options{}, 0, false},
		{"inf", Options{}, 0, false},
		{"2024-01-05", Options{}, 0, false},
		{"abc", Options{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := parseNumeric(tc.in, tc.opt)
		if ok != tc.ok || (ok && math.Abs(got-tc.want) > 1e-9) {
			t.Errorf("parseNumeric(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClassifyStays(t *testing.T) {
	ct := Classify(loadStays(t))
	check := func(label string, got, want []string) {
		t.Helper()
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("%s = %v, want %v", label, got, want)
		}
	}
	check("numeric", ct.Numeric, []string{"price", "guests"})
	check("categorical", ct.Categorical, []string{"property", "source", "booked"})
	check("datetime", ct.Datetime, []string{"date"})
	check("text", ct.Text, []string{"notes"})
}

func TestClassifyPartitionsEveryColumnOnce(t *testing.T) {
	tbl := loadStays(t)
	ct := Classify(tbl)
	seen := map[string]int{}
	for _, bucket := range [][]string{ct.Numeric, ct.Categorical, ct.Datetime, ct.Text} {
		for _, n := range bucket {
			seen[n]++
		}
	}
	if len(seen) != len(tbl.Columns) {
		t.Fatalf("classified %d of %d columns", len(seen), len(tbl.Columns))
	}
	for n, c := range seen {
		if c != 1 {
			t.Fatalf("column %s classified %d times", n, c)
		}
	}
	if cls, ok := ct.Of("notes"); !ok || cls != ClassText {
		t.Fatalf("Of(notes) = %q %v", cls, ok)
	}
}

func TestClassifyEmptyTable(t *testing.T) {
	ct := Classify(&Table{})
	if len(ct.Numeric)+len(ct.Categorical)+len(ct.Datetime)+len(ct.Text) != 0 {
		t.Fatalf("expected empty buckets, got %+v", ct)
	}
}

func TestCategoricalThresholdScalesWithRows(t *testing.T) {
	build := func(rows, distinct int) *Table {
		recs := make([][]string, rows)
		for i := range recs {
			recs[i] = []string{"v" + string(rune('a'+i%distinct))}
		}
		return FromRecords("t", []string{"label"}, recs, Options{})
	}
	// 15 distinct values: text for 100 rows (threshold 10), categorical for 400 (threshold 20).
	if ct := Classify(build(100, 15)); len(ct.Text) != 1 {
		t.Fatalf("100 rows: %+v", ct)
	}
	if ct := Classify(build(400, 15)); len(ct.Categorical) != 1 {
		t.Fatalf("400 rows: %+v", ct)
	}
}

func TestFromValuesAndWriteCSV(t *testing.T) {
	day := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	tbl := FromValues("pricing", []string{"date", "price", "status"}, [][]any{
		{day, 210.5, "booked"},
		{day.AddDate(0, 0, 1), 199, "available"},
	})
	ct := Classify(tbl)
	if len(ct.Datetime) != 1 || len(ct.Numeric) != 1 || len(ct.Categorical) != 1 {
		t.Fatalf("unexpected classes %+v", ct)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "date,price,status\n2024-12-24,210.5,booked\n2024-12-25,199,available\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestLookupUnknownColumn(t *testing.T) {
	_, err := loadStays(t).Lookup("nope")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestDescribeMarkdown(t *testing.T) {
	s := Describe(loadStays(t), 2)
	var price ColumnSummary
	for _, c := range s.Columns {
		if c.Name == "price" {
			price = c
		}
	}
	if price.Missing != 1 || price.NonNull != 11 {
		t.Fatalf("price counts = %+v", price)
	}
	if price.Min != 88 || price.Max != 180.25 {
		t.Fatalf("price range = %v..%v", price.Min, price.Max)
	}
	if math.Abs(price.Mean-1392.15/11) > 1e-9 {
		t.Fatalf("price mean = %v", price.Mean)
	}
	md := s.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: stays.csv",
		"Rows: 12",
		"- price: numeric (non-null 11, missing 8.3%)",
		"- source: categorical",
		"- notes: text",
		"- date: datetime (non-null 12, missing 0.0%): 2024-06-01 to 2024-06-12",
		"[CORRELATIONS]",
		"[HEAD AND SAMPLE ROWS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

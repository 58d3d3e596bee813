package cmd

import (
	"reflect"
	"testing"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/spf13/pflag"
)

func TestDateFlag(t *testing.T) {
	var d store.Date
	fs := pflag.NewFlagSet("t", pflag.ContinueOnError)
	dateVar(fs, &d, "from", "")
	if err := fs.Parse([]string{"--from", "2024-02-29"}); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("got %s", d)
	}
	if err := fs.Set("from", "2024-13-01"); err == nil {
		t.Fatalf("expected invalid month to fail")
	}
	if err := fs.Set("from", ""); err != nil || !d.IsZero() {
		t.Fatalf("empty value should reset: %v %s", err, d)
	}
}

func TestParseSettings(t *testing.T) {
	got, err := parseSettings([]string{"x=property", "bins=10", "y = a, b", "title=Price 2024"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"x":     "property",
		"bins":  float64(10),
		"y":     []string{"a", "b"},
		"title": "Price 2024",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseSettings([]string{bad}); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}

func TestDatasetFlagOptions(t *testing.T) {
	cases := []struct {
		flags   datasetFlags
		delim   rune
		decimal rune
		thou    rune
		wantErr bool
	}{
		{flags: datasetFlags{}},
		{flags: datasetFlags{delimiter: "tab", decimal: "comma", thousands: "."}, delim: '\t', decimal: ',', thou: '.'},
		{flags: datasetFlags{delimiter: ";", decimal: ".", thousands: "space"}, delim: ';', decimal: '.', thou: ' '},
		{flags: datasetFlags{delimiter: "|"}, wantErr: true},
		{flags: datasetFlags{decimal: "x"}, wantErr: true},
		{flags: datasetFlags{thousands: "_"}, wantErr: true},
	}
	for i, c := range cases {
		opt, err := c.flags.options()
		if (err != nil) != c.wantErr {
			t.Fatalf("case %d: err = %v", i, err)
		}
		if err != nil {
			continue
		}
		if opt.Delimiter != c.delim || opt.DecimalSeparator != c.decimal || opt.ThousandsSeparator != c.thou {
			t.Fatalf("case %d: %+v", i, opt)
		}
	}
}

func TestParseFilterJSON(t *testing.T) {
	f, err := parseFilterJSON(`{"price": [100, 200], "city": ["Como", "Bellagio"]}`)
	if err != nil || len(f) != 2 {
		t.Fatalf("filters = %v, %v", f, err)
	}
	if f, err := parseFilterJSON("  "); err != nil || len(f) != 0 {
		t.Fatalf("empty filter: %v %v", f, err)
	}
	if _, err := parseFilterJSON(`{"price": `); err == nil {
		t.Fatalf("broken JSON should fail")
	}
}

func TestSlug(t *testing.T) {
	for in, want := range map[string]string{
		"Mean price":        "mean-price",
		"  Revenue / Month": "revenue-month",
		"---":               "panel",
		"Città 2024!":       "citt-2024",
	} {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMask(t *testing.T) {
	if mask("") != "" || mask("abc") != "******" || mask("sk-1234567890") != "sk-****890" {
		t.Fatalf("mask mismatch: %q", mask("sk-1234567890"))
	}
}

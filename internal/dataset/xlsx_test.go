package dataset

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	testWorkbookXML = `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Rates" sheetId="2" r:id="rId2"/></sheets>
</workbook>`
	testRelsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`
	testSharedXML = `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>season</t></si><si><t>rate</t></si><si><r><t>hi</t></r><r><t>gh</t></r></si><si><t>low</t></si>
</sst>`
	testSheet1XML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>memo</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>check boiler</t></is></c></row>
</sheetData></worksheet>`
	testSheet2XML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>open</t></is></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>120.5</v></c><c r="C2" t="b"><v>1</v></c></row>
<row r="3"><c r="A3" t="s"><v>3</v></c><c r="C3" t="b"><v>0</v></c></row>
</sheetData></worksheet>`
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testRelsXML,
		"xl/sharedStrings.xml":       testSharedXML,
		"xl/worksheets/sheet1.xml":   testSheet1XML,
		"xl/worksheets/sheet2.xml":   testSheet2XML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestLoadXLSXBySheetName(t *testing.T) {
	path := writeWorkbook(t)
	tbl, err := LoadXLSX(path, "rates", DefaultOptions())
	if err != nil {
		t.Fatalf("LoadXLSX: %v", err)
	}
	if got := strings.Join(tbl.Header(), ","); got != "season,rate,open" {
		t.Fatalf("header = %s", got)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("rows = %d", tbl.NumRows())
	}
	if got := strings.Join(tbl.Row(0), ","); got != "high,120.5,true" {
		t.Fatalf("row0 = %s", got)
	}
	rate, _ := tbl.Column("rate")
	if rate.Kind != KindNumeric || rate.Valid[1] {
		t.Fatalf("rate column = %+v", rate)
	}
	open, _ := tbl.Column("open")
	if open.Kind != KindBool {
		t.Fatalf("open kind = %s", open.Kind)
	}
}

func TestLoadXLSXDefaultsToFirstSheet(t *testing.T) {
	path := writeWorkbook(t)
	tbl, err := Load(path, DefaultOptions(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := strings.Join(tbl.Header(), ","); got != "memo" {
		t.Fatalf("header = %s", got)
	}
	names, err := SheetNames(path)
	if err != nil || strings.Join(names, ",") != "Notes,Rates" {
		t.Fatalf("SheetNames = %v %v", names, err)
	}
}

func TestLoadXLSXUnknownSheet(t *testing.T) {
	_, err := LoadXLSX(writeWorkbook(t), "Budget", DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "available: Notes, Rates") {
		t.Fatalf("expected helpful error, got %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.in); got != tt.want {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA10": 26, "ab2": 27} {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}

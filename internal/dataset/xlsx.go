package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LoadXLSX reads one worksheet of a .xlsx workbook into a table. sheet selects
// by name (case-insensitive); empty means the first sheet in the workbook.
func LoadXLSX(p string, sheet string, opt Options) (*Table, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb, err := readWorkbook(zr)
	if err != nil {
		return nil, err
	}
	target, err := wb.sheetPath(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	data := readZipFile(zr, target)
	if data == nil {
		return nil, fmt.Errorf("worksheet %s missing from %s", target, filepath.Base(p))
	}
	rr := newSheetRowReader(data, wb.shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return &Table{Name: filepath.Base(p)}, nil
	}
	var rows [][]string
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rows = append(rows, row)
	}
	// Excel stores numbers with '.' regardless of the user's locale.
	if opt.DecimalSeparator == 0 {
		opt.DecimalSeparator = '.'
	}
	return FromRecords(filepath.Base(p), header, rows, opt), nil
}

type workbook struct {
	sheets []xlsxSheet
	rels   map[string]string
	shared []string
}

type xlsxSheet struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// SheetNames lists the worksheet names of a workbook in order.
func SheetNames(p string) ([]string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb, err := readWorkbook(zr)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s.Name
	}
	return out, nil
}

func readWorkbook(zr *zip.Reader) (*workbook, error) {
	var doc struct {
		Sheets []xlsxSheet `xml:"sheets>sheet"`
	}
	if raw := readZipFile(zr, "xl/workbook.xml"); raw != nil {
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse workbook: %w", err)
		}
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if raw := readZipFile(zr, "xl/_rels/workbook.xml.rels"); raw != nil {
		if err := xml.Unmarshal(raw, &rels); err != nil {
			return nil, fmt.Errorf("parse workbook relationships: %w", err)
		}
	}
	wb := &workbook{sheets: doc.Sheets, rels: map[string]string{}}
	for _, r := range rels.Items {
		wb.rels[r.ID] = r.Target
	}
	if raw := readZipFile(zr, "xl/sharedStrings.xml"); raw != nil {
		wb.shared = parseSharedStrings(raw)
	}
	return wb, nil
}

func (wb *workbook) sheetPath(name string) (string, error) {
	if len(wb.sheets) == 0 {
		return "xl/worksheets/sheet1.xml", nil
	}
	pick := wb.sheets[0]
	if name != "" {
		found := false
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				pick, found = s, true
				break
			}
		}
		if !found {
			names := make([]string, len(wb.sheets))
			for i, s := range wb.sheets {
				names[i] = s.Name
			}
			return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(names, ", "))
		}
	}
	if rel, ok := wb.rels[pick.RID]; ok {
		return normalizeRelPath(rel), nil
	}
	return "xl/worksheets/sheet1.xml", nil
}

// normalizeRelPath turns a relationship target ("/xl/worksheets/sheet1.xml"
// or "worksheets/sheet1.xml") into a zip entry name.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// parseSharedStrings concatenates every <t> run of each <si> entry.
func parseSharedStrings(data []byte) []string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams rows out of a worksheet, placing each cell at the
// column given by its reference so sparse rows keep their shape.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline struct {
		Text string `xml:"t"`
	} `xml:"is"`
}

func (r *sheetRowReader) Next() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []xlsxCell `xml:"c"`
		}
		if err := r.dec.DecodeElement(&row, &se); err != nil {
			return nil, false
		}
		var out []string
		for i, c := range row.Cells {
			idx := i
			if c.Ref != "" {
				idx = colIndexFromRef(c.Ref)
			}
			if idx < 0 {
				continue
			}
			for len(out) <= idx {
				out = append(out, "")
			}
			out[idx] = r.cellText(c)
		}
		return out, true
	}
}

func (r *sheetRowReader) cellText(c xlsxCell) string {
	switch c.Type {
	case "s":
		i := atoiSafe(c.Value)
		if i >= 0 && i < len(r.shared) {
			return r.shared[i]
		}
		return ""
	case "inlineStr":
		return c.Inline.Text
	case "b":
		if c.Value == "1" {
			return "true"
		}
		return "false"
	default:
		return c.Value
	}
}

// colIndexFromRef maps "C12" to 2.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		ch := ref[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
			idx = idx*26 + int(ch-'A'+1)
		case ch >= 'a' && ch <= 'z':
			idx = idx*26 + int(ch-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

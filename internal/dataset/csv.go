package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LoadCSV reads a delimited file into a table.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads delimited text from r. The first record is the header.
func ReadCSV(r io.Reader, name string, opt Options) (*Table, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(br, name)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	maxRows := opt.MaxRows
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if maxRows > 0 && len(rows) >= maxRows {
			break
		}
		rows = append(rows, rec)
	}
	return FromRecords(name, header, rows, opt), nil
}

// WriteCSV writes the raw cells of t with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load picks the loader from the file extension.
func Load(path string, opt Options, sheet string) (*Table, error) {
	switch filepath.Ext(path) {
	case ".xlsx", ".XLSX":
		return LoadXLSX(path, sheet, opt)
	default:
		return LoadCSV(path, opt)
	}
}

package dataset

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Options controls how raw text is turned into a table.
type Options struct {
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffed from the header among ',', ';', '\t'.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{MaxRows: 100000}
}

// sniffDelimiter picks the most frequent of ',', ';' and tab in the first line.
func sniffDelimiter(br *bufio.Reader, name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	line, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return ','
	}
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(string(line), string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "02.01.2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric accepts plain, percent, and locale-formatted numbers such as
// "1.000,5" or "1,000.5". Words like "NaN" or "inf" are not numbers here.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if !strings.ContainsRune("0123456789.,+-eE ", r) {
			return 0, false
		}
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
		raw = strings.ReplaceAll(raw, " ", "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

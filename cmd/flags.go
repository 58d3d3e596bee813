package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/spf13/pflag"
)

// dateValue is a YYYY-MM-DD flag bound to a store.Date.
type dateValue struct{ d *store.Date }

var _ pflag.Value = dateValue{}

func (v dateValue) String() string {
	if v.d == nil {
		return ""
	}
	return v.d.String()
}

func (v dateValue) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		*v.d = store.Date{}
		return nil
	}
	d, err := store.ParseDate(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (v dateValue) Type() string { return "date" }

func dateVar(fs *pflag.FlagSet, p *store.Date, name, usage string) {
	fs.Var(dateValue{p}, name, usage)
}

// datasetFlags are the loader flags shared by the data commands.
type datasetFlags struct {
	delimiter string
	decimal   string
	thousands string
	sheet     string
}

func (d *datasetFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&d.delimiter, "delimiter", "", "CSV delimiter: ',', ';' or 'tab' (default: sniffed)")
	fs.StringVar(&d.decimal, "decimal", "", "decimal separator: '.' or 'comma' (default: auto per value)")
	fs.StringVar(&d.thousands, "thousands", "", "thousands separator: ',', '.' or 'space'")
	fs.StringVar(&d.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
}

func (d *datasetFlags) options() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	switch d.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "\t", "tab", `\t`:
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", d.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(d.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", d.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(d.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", d.thousands)
	}
	return opt, nil
}

func (d *datasetFlags) load(path string) (*dataset.Table, error) {
	opt, err := d.options()
	if err != nil {
		return nil, err
	}
	return dataset.Load(path, opt, d.sheet)
}

// parseFilterJSON decodes a --filter value such as {"price": [100, 200]}.
func parseFilterJSON(s string) (dataset.Filters, error) {
	if strings.TrimSpace(s) == "" {
		return dataset.Filters{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("invalid --filter JSON: %w", err)
	}
	return dataset.ParseFilters(raw)
}

// parseSettings turns repeated key=value flags into a chart config. Numbers
// and comma lists are converted so "bins=10" and "y=a,b" work as expected.
func parseSettings(kv []string) (map[string]any, error) {
	out := map[string]any{}
	for _, s := range kv {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid setting %q (want key=value)", s)
		}
		v = strings.TrimSpace(v)
		switch {
		case strings.Contains(v, ","):
			parts := strings.Split(v, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			out[k] = parts
		default:
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out[k] = n
			} else {
				out[k] = v
			}
		}
	}
	return out, nil
}

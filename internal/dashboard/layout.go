package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"gopkg.in/yaml.v3"
)

// Layout is a dashboard described in YAML together with its dataset.
//
//	name: Summer review
//	dataset: nights.csv
//	panels:
//	  - title: Price by property
//	    chart_type: bar
//	    config: {x: property, y: price, agg: mean}
//	    filters: {price: [50, 400]}
type Layout struct {
	Name      string  `yaml:"name"`
	Dataset   string  `yaml:"dataset"`
	Sheet     string  `yaml:"sheet,omitempty"`
	Delimiter string  `yaml:"delimiter,omitempty"`
	Decimal   string  `yaml:"decimal,omitempty"`
	Panels    []Panel `yaml:"panels"`

	dir string
}

// LoadLayout reads a YAML layout. Unknown keys are rejected and a relative
// dataset path is resolved against the layout's directory.
func LoadLayout(path string) (*Layout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", filepath.Base(path), err)
	}
	if len(l.Panels) == 0 {
		return nil, errors.New("layout has no panels")
	}
	l.dir = filepath.Dir(path)
	if l.Dataset != "" && !filepath.IsAbs(l.Dataset) {
		l.Dataset = filepath.Join(l.dir, l.Dataset)
	}
	return &l, nil
}

// Dashboard builds the dashboard described by the layout.
func (l *Layout) Dashboard() (*Dashboard, error) {
	name := l.Name
	if name == "" {
		name = "dashboard"
	}
	d := New(name)
	for i, p := range l.Panels {
		if _, err := d.AddPanel(p); err != nil {
			return nil, fmt.Errorf("panel %d: %w", i+1, err)
		}
	}
	return d, nil
}

// LoadDataset reads the layout's dataset with its loader options.
func (l *Layout) LoadDataset() (*dataset.Table, error) {
	if l.Dataset == "" {
		return nil, errors.New("layout does not name a dataset")
	}
	opt := dataset.DefaultOptions()
	if l.Delimiter != "" {
		r := []rune(l.Delimiter)
		if l.Delimiter == `\t` || l.Delimiter == "tab" {
			r = []rune{'\t'}
		}
		opt.Delimiter = r[0]
	}
	if l.Decimal != "" {
		opt.DecimalSeparator = []rune(l.Decimal)[0]
	}
	return dataset.Load(l.Dataset, opt, l.Sheet)
}

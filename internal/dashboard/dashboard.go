package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/chart"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"github.com/google/uuid"
)

// Grid units used when a panel does not set its size.
const (
	DefaultWidth  = 6
	DefaultHeight = 4
)

// ErrPanelNotFound is returned when removing an unknown panel id.
var ErrPanelNotFound = errors.New("panel not found")

// Panel is one chart of a dashboard: a chart type, its options and the
// filters applied to the dataset before plotting.
type Panel struct {
	ID        string         `json:"id" yaml:"id"`
	Title     string         `json:"title" yaml:"title"`
	ChartType string         `json:"chart_type" yaml:"chart_type"`
	Config    map[string]any `json:"config" yaml:"config"`
	Filters   map[string]any `json:"filters,omitempty" yaml:"filters"`
	Width     int            `json:"width" yaml:"width"`
	Height    int            `json:"height" yaml:"height"`
}

// Dashboard is an ordered list of panels.
type Dashboard struct {
	Name      string    `json:"name" yaml:"name"`
	Panels    []Panel   `json:"panels" yaml:"panels"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// New returns an empty dashboard.
func New(name string) *Dashboard {
	return &Dashboard{Name: strings.TrimSpace(name), Panels: []Panel{}, UpdatedAt: time.Now()}
}

// AddPanel appends a panel, assigning an id and default size when missing.
func (d *Dashboard) AddPanel(p Panel) (Panel, error) {
	p.ChartType = strings.ToLower(strings.TrimSpace(p.ChartType))
	if p.ChartType == "" {
		return Panel{}, errors.New("panel chart_type is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for _, existing := range d.Panels {
		if existing.ID == p.ID {
			return Panel{}, fmt.Errorf("panel id %q already used", p.ID)
		}
	}
	if p.Width <= 0 {
		p.Width = DefaultWidth
	}
	if p.Height <= 0 {
		p.Height = DefaultHeight
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if p.Title == "" {
		p.Title = fmt.Sprintf("Panel %d", len(d.Panels)+1)
	}
	d.Panels = append(d.Panels, p)
	d.UpdatedAt = time.Now()
	return p, nil
}

// RemovePanel deletes the panel with the given id.
func (d *Dashboard) RemovePanel(id string) error {
	for i, p := range d.Panels {
		if p.ID == id {
			d.Panels = append(d.Panels[:i], d.Panels[i+1:]...)
			d.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPanelNotFound, id)
}

// Clone returns a deep enough copy for saving a snapshot: panels are copied,
// option maps are shared read-only.
func (d *Dashboard) Clone() *Dashboard {
	c := *d
	c.Panels = append([]Panel(nil), d.Panels...)
	return &c
}

// RenderedPanel pairs a panel with its figure and the row count it plotted.
type RenderedPanel struct {
	Panel  Panel         `json:"panel"`
	Rows   int           `json:"rows"`
	Figure *chart.Figure `json:"figure"`
	Error  string        `json:"error,omitempty"`
}

// Render filters the table per panel and dispatches each chart. Panels never
// fail the whole dashboard: a bad panel yields a placeholder figure.
func (d *Dashboard) Render(t *dataset.Table) []RenderedPanel {
	out := make([]RenderedPanel, 0, len(d.Panels))
	for _, p := range d.Panels {
		out = append(out, RenderPanel(t, p))
	}
	return out
}

// RenderPanel renders a single panel against the table.
func RenderPanel(t *dataset.Table, p Panel) RenderedPanel {
	cfg := chart.Config{}
	for k, v := range p.Config {
		cfg[k] = v
	}
	if _, ok := cfg["title"]; !ok && p.Title != "" {
		cfg["title"] = p.Title
	}
	rp := RenderedPanel{Panel: p}
	filtered := t
	if len(p.Filters) > 0 && t != nil {
		filters, err := dataset.ParseFilters(p.Filters)
		if err == nil {
			filtered, err = dataset.Apply(t, filters)
		}
		if err != nil {
			rp.Figure = chart.Failed(p.ChartType, p.Title, fmt.Errorf("filters: %w", err))
			rp.Error = rp.Figure.Message()
			return rp
		}
	}
	if filtered != nil {
		rp.Rows = filtered.NumRows()
	}
	rp.Figure = chart.Dispatch(filtered, p.ChartType, cfg)
	rp.Error = rp.Figure.Message()
	return rp
}

package chart

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" (case-insensitive); empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (use png or svg)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// Figure is a chart ready to be rendered. A figure built from an invalid
// request is a placeholder: Err explains the problem and rendering draws
// the message instead of data.
type Figure struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Err   error  `json:"-"`

	chart renderable
}

// Placeholder reports whether the figure carries an error instead of data.
func (f *Figure) Placeholder() bool { return f.Err != nil }

// Message is the placeholder text, empty for real figures.
func (f *Figure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Render writes the figure as an image. If the chart library rejects the
// data (for example a zero range), the figure turns into a placeholder
// carrying that error and the placeholder is rendered instead.
func (f *Figure) Render(format Format, w io.Writer) error {
	if f.chart != nil && f.Err == nil {
		var buf bytes.Buffer
		err := f.chart.Render(format.provider(), &buf)
		if err == nil {
			_, err = w.Write(buf.Bytes())
			return err
		}
		f.Err = fmt.Errorf("render %s: %w", f.Type, err)
	}
	return placeholderChart(f.Title, f.Message()).Render(format.provider(), w)
}

// Bytes renders the figure into memory.
func (f *Figure) Bytes(format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Failed returns a placeholder figure for a request that could not even
// reach the dispatcher, such as a dataset that failed to filter.
func Failed(kind, title string, err error) *Figure {
	return placeholder(kind, title, err)
}

func placeholder(kind, title string, err error) *Figure {
	return &Figure{Type: kind, Title: title, Err: err}
}

// placeholderChart is an empty plot with the message written in the middle.
func placeholderChart(title, msg string) gochart.Chart {
	if title == "" {
		title = "Chart unavailable"
	}
	return gochart.Chart{
		Title:  title,
		Width:  defaultWidth,
		Height: defaultHeight,
		XAxis:  gochart.XAxis{Style: gochart.Hidden()},
		YAxis:  gochart.YAxis{Style: gochart.Hidden()},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Style:   gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: gochart.Disabled},
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
			},
			gochart.AnnotationSeries{
				Annotations: []gochart.Value2{{XValue: 0.5, YValue: 0.5, Label: wrap(msg, 70)}},
			},
		},
	}
}

func wrap(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

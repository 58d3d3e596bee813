package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/insight"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
)

var errDatasetNotFound = errors.New("dataset not found")

// Built-in dataset names backed by the stores.
const (
	datasetProperties    = "properties"
	datasetBookings      = "bookings"
	datasetPricingPrefix = "pricing_"
)

// table resolves a dataset name: session uploads first, then the built-in
// store views. cacheable is false for built-ins, which change with the
// stores.
func (s *Server) table(c *gin.Context, name string) (t *dataset.Table, cacheable bool, err error) {
	if t, ok := sessionOf(c).Dataset(name); ok {
		return t, true, nil
	}
	switch {
	case name == datasetProperties:
		props, err := s.store.Properties.List()
		if err != nil {
			return nil, false, err
		}
		return store.PropertiesTable(props), false, nil
	case name == datasetBookings:
		list, err := s.store.Bookings.List("")
		if err != nil {
			return nil, false, err
		}
		return store.BookingsTable(list), false, nil
	case strings.HasPrefix(name, datasetPricingPrefix):
		days, err := s.store.Pricing.Load(strings.TrimPrefix(name, datasetPricingPrefix))
		if err != nil {
			return nil, false, err
		}
		return store.PricingTable(days), false, nil
	}
	return nil, false, fmt.Errorf("%w: %s", errDatasetNotFound, name)
}

// POST /api/datasets (multipart: file, name, sheet, delimiter)
func (s *Server) uploadDataset(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("file is required: %w", err))
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".csv", ".tsv", ".xlsx":
	default:
		badRequest(c, fmt.Errorf("unsupported file type %q (use .csv, .tsv or .xlsx)", ext))
		return
	}
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	}

	dir, err := os.MkdirTemp("", "ciaohost-upload-*")
	if err != nil {
		fail(c, err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "upload"+ext)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		fail(c, err)
		return
	}
	opt := dataset.DefaultOptions()
	if d := c.PostForm("delimiter"); d != "" {
		if d == "tab" || d == `\t` {
			opt.Delimiter = '\t'
		} else {
			opt.Delimiter = []rune(d)[0]
		}
	}
	t, err := dataset.Load(path, opt, c.PostForm("sheet"))
	if err != nil {
		badRequest(c, err)
		return
	}
	t.Name = name
	sess := sessionOf(c)
	sess.PutDataset(name, t)
	s.charts.DeletePrefix(chartKeyPrefix(sess.ID, name))
	c.JSON(http.StatusCreated, gin.H{
		"name":    name,
		"rows":    t.NumRows(),
		"columns": t.Header(),
		"types":   dataset.Classify(t),
	})
}

// GET /api/datasets lists session uploads and built-in views.
func (s *Server) listDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uploaded": sessionOf(c).DatasetNames(),
		"builtin":  []string{datasetProperties, datasetBookings, datasetPricingPrefix + "<property_id>"},
	})
}

// GET /api/datasets/:name/column-types
func (s *Server) columnTypes(c *gin.Context) {
	t, _, err := s.table(c, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dataset.Classify(t))
}

// GET /api/datasets/:name/describe?format=markdown&samples=5
func (s *Server) describeDataset(c *gin.Context) {
	t, _, err := s.table(c, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	samples, _ := strconv.Atoi(c.DefaultQuery("samples", "5"))
	sum := dataset.Describe(t, samples)
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(sum.Markdown()))
		return
	}
	c.JSON(http.StatusOK, sum)
}

type filterRequest struct {
	Filters map[string]any `json:"filters"`
	Limit   int            `json:"limit"`
	SaveAs  string         `json:"save_as"`
}

// POST /api/datasets/:name/filter {"filters": {"price": [100, 200]}, "limit": 50}
func (s *Server) filterDataset(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, _, err := s.table(c, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	filters, err := dataset.ParseFilters(req.Filters)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := dataset.Apply(t, filters)
	if err != nil {
		fail(c, err)
		return
	}
	if req.SaveAs != "" {
		saved := out.Select(allRows(out.NumRows()))
		saved.Name = req.SaveAs
		sess := sessionOf(c)
		sess.PutDataset(req.SaveAs, saved)
		s.charts.DeletePrefix(chartKeyPrefix(sess.ID, req.SaveAs))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	rows := make([][]string, 0, min(limit, out.NumRows()))
	for i := 0; i < out.NumRows() && i < limit; i++ {
		rows = append(rows, out.Row(i))
	}
	c.JSON(http.StatusOK, gin.H{"total": t.NumRows(), "matched": out.NumRows(), "header": out.Header(), "rows": rows})
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

type clusterRequest struct {
	Columns []string `json:"columns" binding:"required,min=1"`
	K       int      `json:"k"`
}

// POST /api/datasets/:name/clusters {"columns": ["price", "guests"], "k": 3}
func (s *Server) clusterDataset(c *gin.Context) {
	var req clusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, _, err := s.table(c, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	if req.K == 0 {
		req.K = 3
	}
	res, err := insight.KMeans(t, req.Columns, req.K)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/datasets/:name/anomalies?column=price&threshold=3.5
func (s *Server) datasetAnomalies(c *gin.Context) {
	t, _, err := s.table(c, c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	column := c.Query("column")
	if column == "" {
		badRequest(c, errors.New("column is required"))
		return
	}
	threshold := insight.DefaultThreshold
	if q := c.Query("threshold"); q != "" {
		if threshold, err = strconv.ParseFloat(q, 64); err != nil {
			badRequest(c, fmt.Errorf("invalid threshold %q", q))
			return
		}
	}
	rep, err := insight.Anomalies(t, column, threshold)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

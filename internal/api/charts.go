package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/chart"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dashboard"
	"github.com/gin-gonic/gin"
)

// ChartErrorHeader is set when the returned image is a placeholder.
const ChartErrorHeader = "X-Chart-Error"

type chartRequest struct {
	Dataset   string         `json:"dataset" binding:"required"`
	ChartType string         `json:"chart_type" binding:"required"`
	Config    map[string]any `json:"config"`
	Filters   map[string]any `json:"filters"`
	Format    string         `json:"format"`
}

func chartKeyPrefix(sessionID, datasetName string) string {
	return sessionID + "|" + datasetName + "|"
}

func chartKey(sessionID string, req chartRequest) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return chartKeyPrefix(sessionID, req.Dataset) + hex.EncodeToString(sum[:])
}

// GET /api/charts/types
func (s *Server) chartTypes(c *gin.Context) {
	c.JSON(http.StatusOK, chart.Types())
}

// POST /api/charts renders an image. Invalid requests still return an image
// (a placeholder) with the problem in the X-Chart-Error header.
func (s *Server) renderChart(c *gin.Context) {
	var req chartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	format, err := chart.ParseFormat(req.Format)
	if err != nil {
		badRequest(c, err)
		return
	}
	t, cacheable, err := s.table(c, req.Dataset)
	if err != nil {
		fail(c, err)
		return
	}
	key := chartKey(sessionOf(c).ID, req)
	if cacheable {
		if item := s.charts.Get(key); item != nil && !item.Expired() {
			c.Header("X-Cache", "hit")
			c.Data(http.StatusOK, format.ContentType(), item.Value())
			return
		}
	}
	title, _ := req.Config["title"].(string)
	rp := dashboard.RenderPanel(t, dashboard.Panel{Title: title, ChartType: req.ChartType, Config: req.Config, Filters: req.Filters})
	img, err := rp.Figure.Bytes(format)
	if err != nil {
		fail(c, err)
		return
	}
	if rp.Figure.Placeholder() {
		c.Header(ChartErrorHeader, rp.Figure.Message())
	} else if cacheable {
		s.charts.Set(key, img, chartCacheTTL)
	}
	c.Data(http.StatusOK, format.ContentType(), img)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/chart"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dashboard"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

const sessionKey = "ciaohost.session"

// withSession attaches the caller's session, creating one when the header
// is missing or stale, and echoes its id in the response header.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := s.sessions.GetOrCreate(c.GetHeader(SessionHeader))
		c.Set(sessionKey, sess)
		c.Header(SessionHeader, sess.ID)
		c.Next()
	}
}

func sessionOf(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// GET /api/session
func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionOf(c).Snapshot())
}

// DELETE /api/session
func (s *Server) endSession(c *gin.Context) {
	sess := sessionOf(c)
	s.sessions.Delete(sess.ID)
	s.charts.DeletePrefix(sess.ID + "|")
	c.Status(http.StatusNoContent)
}

// GET /api/dashboard
func (s *Server) currentDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, sessionOf(c).Current())
}

// POST /api/dashboard/panels
func (s *Server) addPanel(c *gin.Context) {
	var p dashboard.Panel
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	var added dashboard.Panel
	err := sessionOf(c).WithCurrent(func(d *dashboard.Dashboard) error {
		var err error
		added, err = d.AddPanel(p)
		return err
	})
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// DELETE /api/dashboard/panels/:id
func (s *Server) removePanel(c *gin.Context) {
	err := sessionOf(c).WithCurrent(func(d *dashboard.Dashboard) error {
		return d.RemovePanel(c.Param("id"))
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type renderedPanelView struct {
	Panel    dashboard.Panel `json:"panel"`
	Rows     int             `json:"rows"`
	Error    string          `json:"error,omitempty"`
	ImageURL string          `json:"image_url"`
}

// GET /api/dashboard/render?dataset=name
func (s *Server) renderDashboard(c *gin.Context) {
	name := c.Query("dataset")
	if name == "" {
		badRequest(c, errors.New("dataset is required"))
		return
	}
	t, _, err := s.table(c, name)
	if err != nil {
		fail(c, err)
		return
	}
	d := sessionOf(c).Current()
	out := make([]renderedPanelView, 0, len(d.Panels))
	for _, rp := range d.Render(t) {
		out = append(out, renderedPanelView{
			Panel:    rp.Panel,
			Rows:     rp.Rows,
			Error:    rp.Error,
			ImageURL: fmt.Sprintf("/api/dashboard/panels/%s/image?dataset=%s", url.PathEscape(rp.Panel.ID), url.QueryEscape(name)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"name": d.Name, "panels": out})
}

// GET /api/dashboard/panels/:id/image?dataset=name&format=svg
func (s *Server) panelImage(c *gin.Context) {
	format, err := chart.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err)
		return
	}
	t, _, err := s.table(c, c.Query("dataset"))
	if err != nil {
		fail(c, err)
		return
	}
	id := c.Param("id")
	d := sessionOf(c).Current()
	for _, p := range d.Panels {
		if p.ID != id {
			continue
		}
		rp := dashboard.RenderPanel(t, p)
		img, err := rp.Figure.Bytes(format)
		if err != nil {
			fail(c, err)
			return
		}
		if rp.Figure.Placeholder() {
			c.Header(ChartErrorHeader, rp.Figure.Message())
		}
		c.Data(http.StatusOK, format.ContentType(), img)
		return
	}
	fail(c, fmt.Errorf("%w: %s", dashboard.ErrPanelNotFound, id))
}

// GET /api/dashboards
func (s *Server) listDashboards(c *gin.Context) {
	c.JSON(http.StatusOK, sessionOf(c).Dashboards())
}

type saveRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/dashboards {"name": "summer"} saves the current dashboard.
func (s *Server) saveDashboard(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := sessionOf(c).SaveDashboard(req.Name); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"saved": req.Name})
}

// POST /api/dashboards/:name/load
func (s *Server) loadDashboard(c *gin.Context) {
	sess := sessionOf(c)
	if err := sess.LoadDashboard(c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Current())
}

// DELETE /api/dashboards/:name
func (s *Server) deleteDashboard(c *gin.Context) {
	if err := sessionOf(c).DeleteDashboard(c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

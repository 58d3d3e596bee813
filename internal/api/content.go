package api

import (
	"net/http"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/content"
	"github.com/gin-gonic/gin"
)

type contentRequest struct {
	Kind       string `json:"kind" binding:"required"`
	PropertyID string `json:"property_id" binding:"required"`
	Tone       string `json:"tone"`
	Language   string `json:"language"`
	Extra      string `json:"extra"`
}

// GET /api/content/kinds
func (s *Server) contentKinds(c *gin.Context) {
	c.JSON(http.StatusOK, content.Kinds())
}

// POST /api/content
func (s *Server) generateContent(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.store.Properties.Get(req.PropertyID)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := s.content.Generate(c.Request.Context(), content.Request{
		Kind: req.Kind, Property: p, Tone: req.Tone, Language: req.Language, Extra: req.Extra,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

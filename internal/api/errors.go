package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/content"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dashboard"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/insight"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/session"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
)

// errBadRequest marks request-shape problems detected by handlers.
var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, session.ErrNoDashboard),
		errors.Is(err, dashboard.ErrPanelNotFound),
		errors.Is(err, errDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrSeasonOverlap),
		errors.Is(err, store.ErrBookingConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, errBadRequest),
		errors.Is(err, dataset.ErrFilterShape),
		errors.Is(err, dataset.ErrUnknownColumn),
		errors.Is(err, insight.ErrNotNumeric),
		errors.Is(err, insight.ErrTooFewRows),
		errors.Is(err, content.ErrUnknownKind):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes {"error": ...} with the status derived from err.
func fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

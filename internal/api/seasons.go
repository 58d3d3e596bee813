package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
)

// GET /api/seasons
func (s *Server) listSeasons(c *gin.Context) {
	list, err := s.store.Seasons.List()
	if err != nil {
		fail(c, err)
		return
	}
	if list == nil {
		list = []store.Season{}
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/seasons
func (s *Server) addSeason(c *gin.Context) {
	var season store.Season
	if err := c.ShouldBindJSON(&season); err != nil {
		badRequest(c, err)
		return
	}
	added, err := s.store.Seasons.Add(season)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// DELETE /api/seasons/:id
func (s *Server) removeSeason(c *gin.Context) {
	if err := s.store.Seasons.Remove(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/seasons/defaults?year=2025 replaces the calendar with the stock
// seasons of that year.
func (s *Server) defaultSeasons(c *gin.Context) {
	year := store.Today().Year()
	if q := c.Query("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil || y < 1900 || y > 9999 {
			badRequest(c, fmt.Errorf("invalid year %q", q))
			return
		}
		year = y
	}
	list, err := s.store.Seasons.Replace(pricing.DefaultSeasons(year))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/seasons/lookup?date=2024-12-24
func (s *Server) lookupSeason(c *gin.Context) {
	date, err := store.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := s.store.Seasons.List()
	if err != nil {
		fail(c, err)
		return
	}
	season := pricing.SeasonFor(list, date)
	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"season": season,
		"factor": pricing.DefaultMultipliers.Factor(list, date),
	})
}

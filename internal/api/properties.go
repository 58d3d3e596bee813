package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
)

// GET /api/properties?status=active&city=...
func (s *Server) listProperties(c *gin.Context) {
	props, err := s.store.Properties.List()
	if err != nil {
		fail(c, err)
		return
	}
	status, city := c.Query("status"), c.Query("city")
	out := make([]store.Property, 0, len(props))
	for _, p := range props {
		if status != "" && p.Status != status {
			continue
		}
		if city != "" && p.City != city {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/properties
func (s *Server) createProperty(c *gin.Context) {
	var p store.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	created, err := s.store.Properties.Create(p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /api/properties/:id
func (s *Server) getProperty(c *gin.Context) {
	p, err := s.store.Properties.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/properties/:id merges the JSON body onto the stored record.
func (s *Server) updateProperty(c *gin.Context) {
	id := c.Param("id")
	p, err := s.store.Properties.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	p.ID = id
	updated, err := s.store.Properties.Update(p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/properties/:id also drops the property's bookings.
func (s *Server) deleteProperty(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.Properties.Delete(id); err != nil {
		fail(c, err)
		return
	}
	removed, err := s.store.Bookings.DeleteForProperty(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "bookings_removed": removed})
}

type generateRequest struct {
	From string `json:"from"`
	Days int    `json:"days"`
	Seed int64  `json:"seed"`
}

// POST /api/properties/:id/pricing/generate {"from": "2024-07-01", "days": 90}
func (s *Server) generatePricing(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	p, err := s.store.Properties.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	from := store.Today()
	if req.From != "" {
		if from, err = store.ParseDate(req.From); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.Days == 0 {
		req.Days = 90
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.seed
	}
	days, err := s.calendar(p, from, req.Days, seed)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": p.ID, "days": days, "stats": pricing.Occupancy(days)})
}

// calendar generates and persists a price calendar using stored seasons
// and bookings.
func (s *Server) calendar(p store.Property, from store.Date, n int, seed int64) ([]store.PricingDay, error) {
	seasons, err := s.store.Seasons.List()
	if err != nil {
		return nil, err
	}
	bookings, err := s.store.Bookings.List(p.ID)
	if err != nil {
		return nil, err
	}
	days, err := pricing.NewGenerator(seed).Generate(p, seasons, bookings, from, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := s.store.Pricing.Save(p.ID, days); err != nil {
		return nil, err
	}
	return days, nil
}

// GET /api/properties/:id/pricing
func (s *Server) getPricing(c *gin.Context) {
	id := c.Param("id")
	days, err := s.store.Pricing.Load(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": id, "days": days, "stats": pricing.Occupancy(days)})
}

// GET /api/properties/:id/pricing/recommend?date=2024-08-15
func (s *Server) recommendPrice(c *gin.Context) {
	p, err := s.store.Properties.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	date := store.Today()
	if q := c.Query("date"); q != "" {
		if date, err = store.ParseDate(q); err != nil {
			badRequest(c, err)
			return
		}
	}
	seasons, err := s.store.Seasons.List()
	if err != nil {
		fail(c, err)
		return
	}
	rec, err := s.recommender.Recommend(c.Request.Context(), p, seasons, date)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/properties/:id/market?n=8
func (s *Server) marketComparison(c *gin.Context) {
	p, err := s.store.Properties.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("n", "8"))
	if err != nil || n <= 0 || n > 100 {
		badRequest(c, fmt.Errorf("n must be between 1 and 100"))
		return
	}
	m, err := pricing.MarketComparison(p, n, nil)
	if err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	c.JSON(http.StatusOK, m)
}

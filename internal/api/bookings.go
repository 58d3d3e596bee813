package api

import (
	"errors"
	"net/http"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/pricing"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
)

// GET /api/bookings?property_id=...
func (s *Server) listBookings(c *gin.Context) {
	list, err := s.store.Bookings.List(c.Query("property_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/bookings. A zero total_price is quoted from the property's
// calendar.
func (s *Server) createBooking(c *gin.Context) {
	var b store.Booking
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, err)
		return
	}
	if err := store.ValidateStay(b.CheckIn, b.CheckOut); err != nil {
		fail(c, err)
		return
	}
	p, err := s.store.Properties.Get(b.PropertyID)
	if err != nil {
		fail(c, err)
		return
	}
	if b.Guests > p.MaxGuests {
		badRequest(c, errors.New("guests exceed the property's max_guests"))
		return
	}
	if b.TotalPrice == 0 {
		cal, err := s.store.Pricing.Load(p.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			fail(c, err)
			return
		}
		b.TotalPrice = pricing.Quote(p, cal, b.CheckIn, b.CheckOut)
	}
	created, err := s.store.Bookings.Create(b)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// POST /api/bookings/:id/cancel
func (s *Server) cancelBooking(c *gin.Context) {
	b, err := s.store.Bookings.Cancel(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

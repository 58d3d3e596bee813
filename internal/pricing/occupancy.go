package pricing

import (
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// Stats are the usual revenue indicators of a price calendar.
type Stats struct {
	Nights       int     `json:"nights"`
	Booked       int     `json:"booked"`
	Blocked      int     `json:"blocked"`
	Occupancy    float64 `json:"occupancy"`
	ADR          float64 `json:"adr"`
	RevPAR       float64 `json:"revpar"`
	Revenue      float64 `json:"revenue"`
	AveragePrice float64 `json:"average_price"`
}

// Occupancy computes occupancy (booked over sellable nights), average daily
// rate of booked nights and revenue per available night. Blocked nights are
// not sellable.
func Occupancy(days []store.PricingDay) Stats {
	var s Stats
	var total float64
	for _, d := range days {
		s.Nights++
		total += d.Price
		switch d.Status {
		case store.DayBooked:
			s.Booked++
			s.Revenue += d.Price
		case store.DayBlocked:
			s.Blocked++
		}
	}
	if s.Nights == 0 {
		return s
	}
	s.AveragePrice = round2(total / float64(s.Nights))
	if sellable := s.Nights - s.Blocked; sellable > 0 {
		s.Occupancy = round2(float64(s.Booked) / float64(sellable))
		s.RevPAR = round2(s.Revenue / float64(sellable))
	}
	if s.Booked > 0 {
		s.ADR = round2(s.Revenue / float64(s.Booked))
	}
	s.Revenue = round2(s.Revenue)
	return s
}

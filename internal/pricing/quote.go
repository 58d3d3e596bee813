package pricing

import (
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// Quote prices a stay from check-in to check-out. Nights present in the
// generated calendar use their price; the rest use the property's current
// price (or base price when unset).
func Quote(p store.Property, calendar []store.PricingDay, checkIn, checkOut store.Date) float64 {
	if checkIn.IsZero() || !checkOut.After(checkIn.Time) {
		return 0
	}
	byDate := make(map[string]float64, len(calendar))
	for _, d := range calendar {
		byDate[d.Date.String()] = d.Price
	}
	fallback := p.CurrentPrice
	if fallback <= 0 {
		fallback = p.BasePrice
	}
	var total float64
	for d := checkIn; d.Before(checkOut.Time); d = d.AddDays(1) {
		if price, ok := byDate[d.String()]; ok {
			total += price
			continue
		}
		total += fallback
	}
	return round2(total)
}

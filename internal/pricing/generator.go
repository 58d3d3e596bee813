package pricing

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// GeneratorJitter is the spread of random noise applied to generated prices.
const GeneratorJitter = 0.05

// MaxCalendarDays bounds a single generation run.
const MaxCalendarDays = 730

// Generator produces synthetic price calendars.
type Generator struct {
	Multipliers Multipliers
	Jitter      float64
	Rand        *rand.Rand
}

// NewGenerator returns a generator using the default multipliers. A zero seed
// picks a time-based one.
func NewGenerator(seed int64) *Generator {
	rng := newRand()
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	return &Generator{Multipliers: DefaultMultipliers, Jitter: GeneratorJitter, Rand: rng}
}

// Generate prices `days` nights starting at from. Nights covered by an active
// booking of the property are marked booked, the rest available.
func (g *Generator) Generate(p store.Property, seasons []store.Season, bookings []store.Booking, from store.Date, days int) ([]store.PricingDay, error) {
	if p.BasePrice <= 0 {
		return nil, fmt.Errorf("property %s has no base price", p.ID)
	}
	if days <= 0 || days > MaxCalendarDays {
		return nil, fmt.Errorf("days must be between 1 and %d, got %d", MaxCalendarDays, days)
	}
	if from.IsZero() {
		return nil, errors.New("start date is required")
	}
	var held []store.Booking
	for _, b := range bookings {
		if b.PropertyID == p.ID && b.Active() {
			held = append(held, b)
		}
	}
	out := make([]store.PricingDay, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDays(i)
		price := g.Multipliers.Expected(p.BasePrice, seasons, date) * jitter(g.Rand, g.Jitter)
		status := store.DayAvailable
		for _, b := range held {
			if b.Covers(date) {
				status = store.DayBooked
				break
			}
		}
		out = append(out, store.PricingDay{Date: date, Price: round2(price), Status: status})
	}
	return out, nil
}

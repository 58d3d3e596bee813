package pricing

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"gonum.org/v1/gonum/stat"
)

var coHosts = []string{
	"Lakeside Stays", "Dolce Vita Homes", "Casa Mia Hosting", "BellaVista Rentals",
	"Borgo Antico", "Navigli Apartments", "Riviera Keys", "Stella Hospitality",
	"Porta Nuova Suites", "Tuscan Nest",
}

// Competitor is a simulated comparable listing run by a co-host.
type Competitor struct {
	CoHost    string  `json:"co_host"`
	Bedrooms  int     `json:"bedrooms"`
	Price     float64 `json:"price"`
	Rating    float64 `json:"rating"`
	Occupancy float64 `json:"occupancy"`
}

// Market summarises the simulated competitive set around a property.
type Market struct {
	PropertyID  string       `json:"property_id"`
	YourPrice   float64      `json:"your_price"`
	Competitors []Competitor `json:"competitors"`
	Mean        float64      `json:"mean"`
	Median      float64      `json:"median"`
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	// Percentile is the share of competitors priced at or below the property.
	Percentile float64 `json:"percentile"`
}

// MarketComparison simulates n comparable listings priced around the
// property's current price.
func MarketComparison(p store.Property, n int, rng *rand.Rand) (Market, error) {
	if n <= 0 {
		return Market{}, errors.New("competitor count must be positive")
	}
	price := p.CurrentPrice
	if price <= 0 {
		price = p.BasePrice
	}
	if price <= 0 {
		return Market{}, errors.New("property has no price")
	}
	if rng == nil {
		rng = newRand()
	}
	m := Market{PropertyID: p.ID, YourPrice: price, Competitors: make([]Competitor, n)}
	prices := make([]float64, n)
	for i := range m.Competitors {
		beds := p.Bedrooms + rng.Intn(3) - 1
		if beds < 0 {
			beds = 0
		}
		c := Competitor{
			CoHost:    coHosts[i%len(coHosts)],
			Bedrooms:  beds,
			Price:     round2(price * (0.7 + rng.Float64()*0.6)),
			Rating:    round2(3.8 + rng.Float64()*1.2),
			Occupancy: round2(0.45 + rng.Float64()*0.45),
		}
		m.Competitors[i] = c
		prices[i] = c.Price
	}
	sort.Float64s(prices)
	m.Mean = round2(stat.Mean(prices, nil))
	m.Min, m.Max = prices[0], prices[n-1]
	if n%2 == 1 {
		m.Median = prices[n/2]
	} else {
		m.Median = round2((prices[n/2-1] + prices[n/2]) / 2)
	}
	below := 0
	for _, v := range prices {
		if v <= price {
			below++
		}
	}
	m.Percentile = round2(float64(below) / float64(n) * 100)
	return m, nil
}

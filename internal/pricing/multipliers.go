package pricing

import (
	"math"
	"math/rand"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// Multipliers is the demand model shared by the calendar generator and the
// simulated recommender, so generated and recommended prices agree.
type Multipliers struct {
	// Weekday factors indexed by time.Weekday.
	Weekday [7]float64
}

// DefaultMultipliers favours Friday and Saturday nights.
var DefaultMultipliers = Multipliers{
	Weekday: [7]float64{
		time.Sunday:    0.95,
		time.Monday:    0.90,
		time.Tuesday:   0.90,
		time.Wednesday: 0.95,
		time.Thursday:  1.00,
		time.Friday:    1.15,
		time.Saturday:  1.20,
	},
}

// SeasonFactor converts the season modifier percentage into a factor; 1 when
// no season covers the date.
func SeasonFactor(season *store.Season) float64 {
	if season == nil {
		return 1
	}
	return 1 + season.PriceModifier/100
}

// Factor is the combined season and weekday multiplier for a night.
func (m Multipliers) Factor(seasons []store.Season, date store.Date) float64 {
	w := m.Weekday[date.Weekday()]
	if w == 0 {
		w = 1
	}
	return SeasonFactor(SeasonFor(seasons, date)) * w
}

// Expected is the base price scaled by Factor, before any jitter.
func (m Multipliers) Expected(base float64, seasons []store.Season, date store.Date) float64 {
	return base * m.Factor(seasons, date)
}

// jitter returns a factor uniformly drawn from [1-spread, 1+spread].
func jitter(rng *rand.Rand, spread float64) float64 {
	if rng == nil || spread <= 0 {
		return 1
	}
	return 1 + (rng.Float64()*2-1)*spread
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func newRand() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }

package pricing

import (
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
)

// DefaultSeasons returns the stock calendar for a year: six contiguous,
// non-overlapping ranges from January 1 to December 31.
func DefaultSeasons(year int) []store.Season {
	d := func(m time.Month, day int) store.Date { return store.NewDate(year, m, day) }
	return []store.Season{
		{Name: store.SeasonLow, StartDate: d(time.January, 1), EndDate: d(time.March, 31), PriceModifier: -15, Notes: "Winter low season"},
		{Name: store.SeasonMid, StartDate: d(time.April, 1), EndDate: d(time.June, 14), PriceModifier: 0, Notes: "Spring shoulder season"},
		{Name: store.SeasonHigh, StartDate: d(time.June, 15), EndDate: d(time.September, 15), PriceModifier: 30, Notes: "Summer peak"},
		{Name: store.SeasonMid, StartDate: d(time.September, 16), EndDate: d(time.October, 31), PriceModifier: 0, Notes: "Autumn shoulder season"},
		{Name: store.SeasonLow, StartDate: d(time.November, 1), EndDate: d(time.December, 19), PriceModifier: -15, Notes: "Late autumn low season"},
		{Name: store.SeasonHoliday, StartDate: d(time.December, 20), EndDate: d(time.December, 31), PriceModifier: 25, Notes: "Christmas and New Year"},
	}
}

// SeasonFor returns the first season in list order containing date, or nil.
func SeasonFor(seasons []store.Season, date store.Date) *store.Season {
	for i := range seasons {
		if seasons[i].Contains(date) {
			return &seasons[i]
		}
	}
	return nil
}

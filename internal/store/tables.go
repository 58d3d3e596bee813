package store

import (
	"strings"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

// PropertiesTable exposes properties as a dataset for analysis and charts.
func PropertiesTable(props []Property) *dataset.Table {
	header := []string{"id", "name", "city", "bedrooms", "bathrooms", "max_guests", "base_price", "current_price", "status", "amenities", "created_at"}
	rows := make([][]any, len(props))
	for i, p := range props {
		rows[i] = []any{p.ID, p.Name, p.City, p.Bedrooms, p.Bathrooms, p.MaxGuests, p.BasePrice, p.CurrentPrice, p.Status, strings.Join(p.Amenities, ", "), p.CreatedAt}
	}
	return dataset.FromValues("properties", header, rows)
}

// BookingsTable exposes bookings as a dataset.
func BookingsTable(bookings []Booking) *dataset.Table {
	header := []string{"id", "property_id", "guest_name", "check_in", "check_out", "nights", "guests", "total_price", "status", "source"}
	rows := make([][]any, len(bookings))
	for i, b := range bookings {
		rows[i] = []any{b.ID, b.PropertyID, b.GuestName, b.CheckIn.Time, b.CheckOut.Time, b.Nights(), b.Guests, b.TotalPrice, b.Status, b.Source}
	}
	return dataset.FromValues("bookings", header, rows)
}

// PricingTable exposes a price calendar as a dataset with a weekday column.
func PricingTable(days []PricingDay) *dataset.Table {
	header := []string{"date", "weekday", "price", "status"}
	rows := make([][]any, len(days))
	for i, d := range days {
		rows[i] = []any{d.Date.Time, d.Date.Weekday().String(), d.Price, d.Status}
	}
	return dataset.FromValues("pricing", header, rows)
}

package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid record")
	// ErrSeasonOverlap is returned when a season intersects an existing one.
	ErrSeasonOverlap = errors.New("season overlaps an existing season")
	// ErrBookingConflict is returned when a booking overlaps an active booking
	// of the same property.
	ErrBookingConflict = errors.New("booking overlaps an existing booking")
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const (
	BookingConfirmed = "confirmed"
	BookingPending   = "pending"
	BookingCancelled = "cancelled"
)

const (
	DayAvailable = "available"
	DayBooked    = "booked"
	DayBlocked   = "blocked"
)

// Season names.
const (
	SeasonLow     = "low"
	SeasonMid     = "mid"
	SeasonHigh    = "high"
	SeasonHoliday = "holiday"
)

// Property is a rental unit managed by the host.
type Property struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=200"`
	Address      string    `json:"address" validate:"required,max=512"`
	City         string    `json:"city" validate:"required,max=128"`
	Description  string    `json:"description,omitempty"`
	Bedrooms     int       `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms    float64   `json:"bathrooms" validate:"gte=0,lte=50"`
	MaxGuests    int       `json:"max_guests" validate:"gte=1,lte=100"`
	BasePrice    float64   `json:"base_price" validate:"gt=0"`
	CurrentPrice float64   `json:"current_price" validate:"gte=0"`
	Amenities    []string  `json:"amenities"`
	Photos       []string  `json:"photos"`
	Status       string    `json:"status" validate:"oneof=active inactive"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Booking is a reservation of a property for a range of nights.
type Booking struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id" validate:"required"`
	GuestName  string    `json:"guest_name" validate:"required,max=200"`
	CheckIn    Date      `json:"check_in"`
	CheckOut   Date      `json:"check_out"`
	Guests     int       `json:"guests" validate:"gte=1"`
	TotalPrice float64   `json:"total_price" validate:"gte=0"`
	Status     string    `json:"status" validate:"oneof=confirmed pending cancelled"`
	Source     string    `json:"source"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Nights is the length of stay.
func (b Booking) Nights() int { return b.CheckIn.DaysUntil(b.CheckOut) }

// Active reports whether the booking still holds its nights.
func (b Booking) Active() bool { return b.Status != BookingCancelled }

// Covers reports whether the night starting on d belongs to the booking.
func (b Booking) Covers(d Date) bool {
	return !d.Before(b.CheckIn.Time) && d.Before(b.CheckOut.Time)
}

func (b Booking) overlaps(o Booking) bool {
	return b.CheckIn.Before(o.CheckOut.Time) && o.CheckIn.Before(b.CheckOut.Time)
}

// Season is an inclusive date range with a percentage price modifier.
type Season struct {
	ID            string  `json:"id"`
	Name          string  `json:"name" validate:"oneof=low mid high holiday"`
	StartDate     Date    `json:"start_date"`
	EndDate       Date    `json:"end_date"`
	PriceModifier float64 `json:"price_modifier" validate:"gt=-100,lte=500"`
	Notes         string  `json:"notes,omitempty"`
}

// Contains reports whether d falls inside the season, bounds included.
func (s Season) Contains(d Date) bool { return d.Between(s.StartDate, s.EndDate) }

// Overlaps reports whether the two seasons share at least one day.
func (s Season) Overlaps(o Season) bool {
	return !s.EndDate.Before(o.StartDate.Time) && !o.EndDate.Before(s.StartDate.Time)
}

// PricingDay is the nightly price of a property on one date.
type PricingDay struct {
	Date   Date    `json:"date"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and flattens the result into an
// ErrInvalid error naming each failing field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ValidateProperty checks a property record.
func ValidateProperty(p Property) error {
	return validateStruct(p)
}

// ValidateBooking checks a booking record including its date range.
func ValidateBooking(b Booking) error {
	if err := validateStruct(b); err != nil {
		return err
	}
	return ValidateStay(b.CheckIn, b.CheckOut)
}

// ValidateStay checks that both dates are set and checkOut follows checkIn.
func ValidateStay(checkIn, checkOut Date) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return invalid("check_in and check_out are required")
	}
	if !checkOut.After(checkIn.Time) {
		return invalid("check_out %s must be after check_in %s", checkOut, checkIn)
	}
	return nil
}

// ValidateSeason checks a season record including its date range.
func ValidateSeason(s Season) error {
	if err := validateStruct(s); err != nil {
		return err
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if s.EndDate.Before(s.StartDate.Time) {
		return invalid("end_date %s is before start_date %s", s.EndDate, s.StartDate)
	}
	return nil
}

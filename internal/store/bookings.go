package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Bookings persists Booking records in bookings.json.
type Bookings struct {
	file jsonList[Booking]
	now  func() time.Time
}

// List returns bookings ordered by check-in. A non-empty propertyID restricts
// the result to that property.
func (s *Bookings) List(propertyID string) ([]Booking, error) {
	items, err := s.file.snapshot()
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, b := range items {
		if propertyID == "" || b.PropertyID == propertyID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn.Time) })
	return out, nil
}

// Get returns the booking with the given id.
func (s *Bookings) Get(id string) (Booking, error) {
	items, err := s.file.snapshot()
	if err != nil {
		return Booking{}, err
	}
	for _, b := range items {
		if b.ID == id {
			return b, nil
		}
	}
	return Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
}

// Create validates and stores a booking. Status defaults to confirmed. A
// booking whose nights intersect another active booking of the same property
// is rejected with ErrBookingConflict.
func (s *Bookings) Create(b Booking) (Booking, error) {
	b.Status = strings.ToLower(strings.TrimSpace(b.Status))
	if b.Status == "" {
		b.Status = BookingConfirmed
	}
	b.Source = strings.ToLower(strings.TrimSpace(b.Source))
	if b.Source == "" {
		b.Source = "direct"
	}
	if err := ValidateBooking(b); err != nil {
		return Booking{}, err
	}
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return Booking{}, err
	}
	if b.Active() {
		for _, o := range items {
			if o.PropertyID == b.PropertyID && o.Active() && b.overlaps(o) {
				return Booking{}, fmt.Errorf("%w: %s (%s to %s)", ErrBookingConflict, o.ID, o.CheckIn, o.CheckOut)
			}
		}
	}
	b.ID = newID()
	b.CreatedAt = s.now()
	items = append(items, b)
	if err := s.file.save(items); err != nil {
		return Booking{}, fmt.Errorf("save bookings: %w", err)
	}
	return b, nil
}

// Cancel marks a booking cancelled, releasing its nights.
func (s *Bookings) Cancel(id string) (Booking, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return Booking{}, err
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		items[i].Status = BookingCancelled
		if err := s.file.save(items); err != nil {
			return Booking{}, fmt.Errorf("save bookings: %w", err)
		}
		return items[i], nil
	}
	return Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
}

// DeleteForProperty drops every booking of a property and reports how many
// were removed.
func (s *Bookings) DeleteForProperty(propertyID string) (int, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return 0, err
	}
	kept := items[:0]
	for _, b := range items {
		if b.PropertyID != propertyID {
			kept = append(kept, b)
		}
	}
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.file.save(kept); err != nil {
		return 0, fmt.Errorf("save bookings: %w", err)
	}
	return removed, nil
}

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/utils"
)

// Pricing persists generated price calendars, one pricing_<id>.json per property.
type Pricing struct {
	mu  sync.Mutex
	dir string
}

func (s *Pricing) path(propertyID string) (string, error) {
	if propertyID == "" || strings.ContainsAny(propertyID, `/\`) || strings.Contains(propertyID, "..") {
		return "", invalid("property id %q", propertyID)
	}
	return filepath.Join(s.dir, "pricing_"+propertyID+".json"), nil
}

// Save writes the calendar sorted by date.
func (s *Pricing) Save(propertyID string, days []PricingDay) error {
	p, err := s.path(propertyID)
	if err != nil {
		return err
	}
	sorted := append([]PricingDay(nil), days...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date.Time) })
	s.mu.Lock()
	defer s.mu.Unlock()
	if sorted == nil {
		sorted = []PricingDay{}
	}
	if err := utils.WriteJSON(p, sorted); err != nil {
		return fmt.Errorf("save pricing: %w", err)
	}
	return nil
}

// Load reads the calendar of a property; ErrNotFound when none was generated.
func (s *Pricing) Load(propertyID string) ([]PricingDay, error) {
	p, err := s.path(propertyID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var days []PricingDay
	found, err := utils.ReadJSON(p, &days)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("pricing for %s: %w", propertyID, ErrNotFound)
	}
	return days, nil
}

// Delete removes the calendar file; a missing file is not an error.
func (s *Pricing) Delete(propertyID string) error {
	p, err := s.path(propertyID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

package store

import (
	"fmt"
	"strings"
)

// Seasons persists the season calendar in pricing_seasons.json. List order
// is insertion order, which is also the lookup order.
type Seasons struct {
	file jsonList[Season]
}

// List returns the seasons in stored order.
func (s *Seasons) List() ([]Season, error) {
	return s.file.snapshot()
}

// Add validates a season and appends it unless it overlaps a stored one.
func (s *Seasons) Add(season Season) (Season, error) {
	season.Name = strings.ToLower(strings.TrimSpace(season.Name))
	if err := ValidateSeason(season); err != nil {
		return Season{}, err
	}
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return Season{}, err
	}
	for _, o := range items {
		if season.Overlaps(o) {
			return Season{}, fmt.Errorf("%w: %s %s..%s", ErrSeasonOverlap, o.Name, o.StartDate, o.EndDate)
		}
	}
	season.ID = newID()
	items = append(items, season)
	if err := s.file.save(items); err != nil {
		return Season{}, fmt.Errorf("save seasons: %w", err)
	}
	return season, nil
}

// Remove deletes the season with the given id.
func (s *Seasons) Remove(id string) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := s.file.save(items); err != nil {
				return fmt.Errorf("save seasons: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("season %s: %w", id, ErrNotFound)
}

// Replace overwrites the whole calendar. Every season is validated and the
// set must be free of overlaps; missing ids are assigned.
func (s *Seasons) Replace(seasons []Season) ([]Season, error) {
	out := make([]Season, len(seasons))
	for i, season := range seasons {
		season.Name = strings.ToLower(strings.TrimSpace(season.Name))
		if err := ValidateSeason(season); err != nil {
			return nil, fmt.Errorf("season %d: %w", i+1, err)
		}
		for _, prev := range out[:i] {
			if season.Overlaps(prev) {
				return nil, fmt.Errorf("%w: %s %s..%s", ErrSeasonOverlap, prev.Name, prev.StartDate, prev.EndDate)
			}
		}
		if season.ID == "" {
			season.ID = newID()
		}
		out[i] = season
	}
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	if err := s.file.save(out); err != nil {
		return nil, fmt.Errorf("save seasons: %w", err)
	}
	return out, nil
}

package store

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Properties persists Property records in properties.json.
type Properties struct {
	file    jsonList[Property]
	pricing *Pricing
	now     func() time.Time
}

// List returns all properties sorted by name.
func (s *Properties) List() ([]Property, error) {
	items, err := s.file.snapshot()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

// Get returns the property with the given id.
func (s *Properties) Get(id string) (Property, error) {
	items, err := s.file.snapshot()
	if err != nil {
		return Property{}, err
	}
	for _, p := range items {
		if p.ID == id {
			return p, nil
		}
	}
	return Property{}, fmt.Errorf("property %s: %w", id, ErrNotFound)
}

// Create assigns an id and timestamps, validates and appends the property.
// An empty status becomes active and a zero current price starts at the base price.
func (s *Properties) Create(p Property) (Property, error) {
	normalizeProperty(&p)
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.CurrentPrice == 0 {
		p.CurrentPrice = p.BasePrice
	}
	if err := ValidateProperty(p); err != nil {
		return Property{}, err
	}
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return Property{}, err
	}
	p.ID = newID()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	items = append(items, p)
	if err := s.file.save(items); err != nil {
		return Property{}, fmt.Errorf("save properties: %w", err)
	}
	return p, nil
}

// Update replaces the stored record with the same id, keeping its creation
// time. An empty status keeps the stored one.
func (s *Properties) Update(p Property) (Property, error) {
	normalizeProperty(&p)
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return Property{}, err
	}
	i := slices.IndexFunc(items, func(o Property) bool { return o.ID == p.ID })
	if i < 0 {
		return Property{}, fmt.Errorf("property %s: %w", p.ID, ErrNotFound)
	}
	if p.Status == "" {
		p.Status = items[i].Status
	}
	if err := ValidateProperty(p); err != nil {
		return Property{}, err
	}
	p.CreatedAt = items[i].CreatedAt
	p.UpdatedAt = s.now()
	items[i] = p
	if err := s.file.save(items); err != nil {
		return Property{}, fmt.Errorf("save properties: %w", err)
	}
	return p, nil
}

// Delete removes the property and its generated pricing file.
func (s *Properties) Delete(id string) error {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	items, err := s.file.load()
	if err != nil {
		return err
	}
	kept := items[:0]
	found := false
	for _, p := range items {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	if err := s.file.save(kept); err != nil {
		return fmt.Errorf("save properties: %w", err)
	}
	if s.pricing != nil {
		if err := s.pricing.Delete(id); err != nil {
			return fmt.Errorf("remove pricing: %w", err)
		}
	}
	return nil
}

func normalizeProperty(p *Property) {
	p.Name = strings.TrimSpace(p.Name)
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	p.Amenities = cleanList(p.Amenities)
	p.Photos = cleanList(p.Photos)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

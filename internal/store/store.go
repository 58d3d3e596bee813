package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/utils"
	"github.com/google/uuid"
)

const (
	propertiesFile = "properties.json"
	bookingsFile   = "bookings.json"
	seasonsFile    = "pricing_seasons.json"
)

// Store groups the JSON-file backed repositories living in one data directory.
type Store struct {
	Dir        string
	Properties *Properties
	Bookings   *Bookings
	Seasons    *Seasons
	Pricing    *Pricing
}

// Open prepares the data directory and returns the repositories. Files are
// created lazily on the first write.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	dir, err := utils.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	pricing := &Pricing{dir: dir}
	return &Store{
		Dir:        dir,
		Properties: &Properties{file: jsonList[Property]{path: filepath.Join(dir, propertiesFile)}, pricing: pricing, now: time.Now},
		Bookings:   &Bookings{file: jsonList[Booking]{path: filepath.Join(dir, bookingsFile)}, now: time.Now},
		Seasons:    &Seasons{file: jsonList[Season]{path: filepath.Join(dir, seasonsFile)}},
		Pricing:    pricing,
	}, nil
}

// jsonList is a JSON array file rewritten wholesale on every save. Callers
// hold mu across load-modify-save.
type jsonList[T any] struct {
	mu   sync.Mutex
	path string
}

func (l *jsonList[T]) load() ([]T, error) {
	var items []T
	if _, err := utils.ReadJSON(l.path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (l *jsonList[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	return utils.WriteJSON(l.path, items)
}

// snapshot returns the current contents under the lock.
func (l *jsonList[T]) snapshot() ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func newID() string { return uuid.NewString() }

package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dashboard"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/dataset"
)

// ErrNoDashboard is returned when a saved dashboard name is unknown.
var ErrNoDashboard = errors.New("no saved dashboard with that name")

// Session is the per-user working state: free-form values, the dashboard
// being edited, snapshots saved by name and uploaded datasets. All access
// goes through methods guarded by mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	state      map[string]any
	current    *dashboard.Dashboard
	dashboards map[string]*dashboard.Dashboard
	datasets   map[string]*dataset.Table
}

func newSession(id string) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		state:      map[string]any{},
		current:    dashboard.New("default"),
		dashboards: map[string]*dashboard.Dashboard{},
		datasets:   map[string]*dataset.Table{},
	}
}

// Get returns a state value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state[key]
	return v, ok
}

// Set stores a state value; a nil value deletes the key.
func (s *Session) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == nil {
		delete(s.state, key)
		return
	}
	s.state[key] = v
}

// WithCurrent runs fn on the dashboard being edited while holding the lock.
func (s *Session) WithCurrent(fn func(d *dashboard.Dashboard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.current)
}

// Current returns a copy of the dashboard being edited.
func (s *Session) Current() *dashboard.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// SaveDashboard stores a snapshot of the current dashboard under name.
func (s *Session) SaveDashboard(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("dashboard name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current.Clone()
	snap.Name = name
	s.dashboards[name] = snap
	return nil
}

// LoadDashboard makes a copy of a saved dashboard the current one.
func (s *Session) LoadDashboard(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dashboards[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoDashboard, name)
	}
	s.current = d.Clone()
	return nil
}

// DeleteDashboard drops a saved dashboard.
func (s *Session) DeleteDashboard(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dashboards[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoDashboard, name)
	}
	delete(s.dashboards, name)
	return nil
}

// Dashboards lists saved dashboard names in sorted order.
func (s *Session) Dashboards() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.dashboards))
	for n := range s.dashboards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PutDataset keeps an uploaded table under name.
func (s *Session) PutDataset(name string, t *dataset.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = t
}

// Dataset returns an uploaded table.
func (s *Session) Dataset(name string) (*dataset.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.datasets[name]
	return t, ok
}

// DatasetNames lists uploaded tables in sorted order.
func (s *Session) DatasetNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.datasets))
	for n := range s.datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// View is a JSON-friendly snapshot of a session.
type View struct {
	ID         string               `json:"id"`
	CreatedAt  time.Time            `json:"created_at"`
	State      map[string]any       `json:"state"`
	Current    *dashboard.Dashboard `json:"current"`
	Dashboards []string             `json:"dashboards"`
	Datasets   []string             `json:"datasets"`
}

// Snapshot copies the session for serialization.
func (s *Session) Snapshot() View {
	dash := s.Dashboards()
	sets := s.DatasetNames()
	s.mu.Lock()
	defer s.mu.Unlock()
	state := make(map[string]any, len(s.state))
	for k, v := range s.state {
		state[k] = v
	}
	return View{ID: s.ID, CreatedAt: s.CreatedAt, State: state, Current: s.current.Clone(), Dashboards: dash, Datasets: sets}
}

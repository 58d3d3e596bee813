package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

// Store keeps sessions in memory. Entries expire after ttl of inactivity;
// every successful lookup extends the deadline.
type Store struct {
	cache *ccache.Cache[*Session]
	ttl   time.Duration
}

// NewStore returns a store holding at most maxSessions entries.
func NewStore(ttl time.Duration, maxSessions int64) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	return &Store{
		cache: ccache.New(ccache.Configure[*Session]().MaxSize(maxSessions)),
		ttl:   ttl,
	}
}

// Create starts a new session with a fresh id.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString())
	s.cache.Set(sess.ID, sess, s.ttl)
	return sess
}

// Get returns a live session and extends its lifetime.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	item := s.cache.Get(id)
	if item == nil || item.Expired() {
		return nil, false
	}
	item.Extend(s.ttl)
	return item.Value(), true
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. created reports which happened.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

// Delete ends a session.
func (s *Store) Delete(id string) bool {
	return s.cache.Delete(id)
}

// Len is the number of cached sessions, expired ones included until evicted.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Stop releases the cache's background worker.
func (s *Store) Stop() {
	s.cache.Stop()
}

package session

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Store holds live scan sessions in memory. Sessions are ephemeral by
// design: nothing is persisted, and abandoned sessions simply expire after
// the TTL, which matches closing the scanner and discarding everything.
type Store struct {
	cache *gocache.Cache
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{cache: gocache.New(ttl, ttl/2)}
}

func (s *Store) Put(sess *Session) {
	s.cache.Set(sess.ID.String(), sess, gocache.DefaultExpiration)
}

func (s *Store) Get(id uuid.UUID) (*Session, bool) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (s *Store) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
}

package memory

import (
	"time"

	"ai-writing-be/pkg/suggest"
	"ai-writing-be/pkg/topic"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Session binds a writing session to its coordinator and operating mode.
// Detector is nil when no embedding provider is configured.
type Session struct {
	Id          uuid.UUID
	Mode        string // "live" or "demo"
	Coordinator *suggest.Coordinator
	Detector    *topic.Detector
	CreatedAt   time.Time
}

// SessionRepository holds the live session -> coordinator registry. Sessions
// idle past the TTL are evicted and their coordinator shut down, so abandoned
// tabs cannot leak in-flight work.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(key string, value interface{}) {
		if s, ok := value.(*Session); ok {
			s.Coordinator.Close()
		}
	})
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(session *Session) {
	r.cache.Set(session.Id.String(), session, cache.DefaultExpiration)
}

// Get returns the session and slides its expiry window.
func (r *SessionRepository) Get(sessionID uuid.UUID) (*Session, bool) {
	if x, found := r.cache.Get(sessionID.String()); found {
		s := x.(*Session)
		r.cache.Set(sessionID.String(), s, cache.DefaultExpiration)
		return s, true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

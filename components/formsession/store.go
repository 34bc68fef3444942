package formsession

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/goliatone/go-formstate/pkg/engine"
)

// ErrSessionNotFound is returned for unknown, expired or finished sessions.
var ErrSessionNotFound = errors.New("formsession: session not found")

// session holds one in-progress form. mu serialises engine calls so a state
// is never read and replaced by two requests at once.
type session struct {
	mu     sync.Mutex
	id     string
	form   string
	engine *engine.Engine
	state  engine.FormState
	closed bool
}

// Store is an expiring, size-bounded session cache.
type Store struct {
	cache *lru.LRU[string, *session]
}

// NewStore builds a store holding at most capacity sessions, each dropped
// after ttl without activity. onRemove runs for every session that leaves
// the store, whether deleted, evicted or expired.
func NewStore(capacity int, ttl time.Duration, onRemove func(id string)) *Store {
	var evict lru.EvictCallback[string, *session]
	if onRemove != nil {
		evict = func(id string, _ *session) {
			onRemove(id)
		}
	}
	return &Store{cache: lru.NewLRU[string, *session](capacity, evict, ttl)}
}

func (s *Store) create(form string, eng *engine.Engine, state engine.FormState) *session {
	sess := &session{
		id:     uuid.NewString(),
		form:   form,
		engine: eng,
		state:  state,
	}
	s.cache.Add(sess.id, sess)
	return sess
}

// acquire returns the locked session for id. Callers must call release.
func (s *Store) acquire(id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) release(sess *session) {
	sess.mu.Unlock()
}

// update stores state for sess and restarts its expiry clock.
func (s *Store) update(sess *session, state engine.FormState) {
	sess.state = state
	s.cache.Add(sess.id, sess)
}

// remove drops sess. The caller holds its lock.
func (s *Store) remove(sess *session) {
	sess.closed = true
	s.cache.Remove(sess.id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

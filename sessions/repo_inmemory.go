package sessions

import (
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepo is an in-memory session store, used in tests and single
// process deployments.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemoryRepo creates a new in-memory session repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{sessions: make(map[string]Session)}
}

// New creates an unsaved session with a fresh identifier.
func (r *InMemoryRepo) New() *Session {
	return &Session{ID: uuid.New().String()}
}

// Get retrieves a session by ID.
func (r *InMemoryRepo) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, SessionNotFoundErr
	}
	return &session, nil
}

// Save persists the session and clears its dirty flag. The flag is cleared
// before the copy is taken so a loaded session never reports unsaved
// mutations it does not have.
func (r *InMemoryRepo) Save(session *Session) error {
	session.ClearDirty()

	r.mu.Lock()
	r.sessions[session.ID] = *session
	r.mu.Unlock()

	return nil
}

// Destroy removes a session. Destroying an unknown ID is not an error.
func (r *InMemoryRepo) Destroy(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

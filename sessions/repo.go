package sessions

import "errors"

// SessionNotFoundErr is returned by Get when no session exists for an ID.
var SessionNotFoundErr = errors.New("session not found")

// Repo stores sessions keyed by their identifier. Implementations must not
// refresh any access time on Get; persistence happens only through Save, so
// ordinary requests cause no store writes.
type Repo interface {
	New() *Session
	Get(id string) (*Session, error)
	Save(session *Session) error
	Destroy(id string) error
}

package sessions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileRepo persists each session as one JSON file under a directory, so
// sessions survive process restarts and can be shared by instances mounting
// the same volume. It never touches a file on read; only Save writes.
type FileRepo struct {
	dir string
}

// NewFileRepo creates the session directory if needed and returns a
// file-backed session repository.
func NewFileRepo(dir string) (*FileRepo, error) {
	if dir == "" {
		return nil, fmt.Errorf("[NewFileRepo] session directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[NewFileRepo] failed to create session directory: %w", err)
	}
	return &FileRepo{dir: dir}, nil
}

// New creates an unsaved session with a fresh identifier.
func (r *FileRepo) New() *Session {
	return &Session{ID: uuid.New().String()}
}

// Get loads a session from its file. Missing and unreadable files both report
// SessionNotFoundErr so a corrupt entry behaves like an expired session.
func (r *FileRepo) Get(id string) (*Session, error) {
	path, err := r.sessionPath(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, SessionNotFoundErr
	}

	session := &Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, SessionNotFoundErr
	}
	return session, nil
}

// Save writes the session file and clears the session's dirty flag.
func (r *FileRepo) Save(session *Session) error {
	path, err := r.sessionPath(session.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[FileRepo Save] failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("[FileRepo Save] failed to write session: %w", err)
	}

	session.ClearDirty()
	return nil
}

// Destroy removes the session file. Destroying an unknown ID is not an error.
func (r *FileRepo) Destroy(id string) error {
	path, err := r.sessionPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[FileRepo Destroy] failed to remove session: %w", err)
	}
	return nil
}

func (r *FileRepo) sessionPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return "", SessionNotFoundErr
	}
	return filepath.Join(r.dir, id+".json"), nil
}

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store handles persistence of the session.
type Store struct {
	path string
}

// NewStore creates a session store rooted at stateDir.
// stateDir is typically the user config dir plus "chatline".
func NewStore(stateDir string) *Store {
	return &Store{
		path: filepath.Join(stateDir, "session.json"),
	}
}

// Save persists the session to disk. The file holds a bearer token, so
// it is written with owner-only permissions.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load reads the persisted session. A missing file yields an empty
// (anonymous) session and no error. The token is trusted as-is; expiry
// is only discovered when a request comes back rejected.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if !sess.Authenticated() {
		// A partial record (token without username or vice versa) is
		// unusable; treat it as anonymous.
		return &Session{}, nil
	}

	return &sess, nil
}

// Clear removes the persisted session. Token, username and user id live
// in one file, so they are cleared atomically. Clearing an absent
// session is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lacsverts/internal/logging"

	"go.uber.org/zap"
)

// FileStore keeps the token in a small JSON file readable only by the user.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileContents struct {
	SessionToken string `json:"sessionToken"`
}

// NewFileStore creates a store backed by path. Nothing is touched until the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (fs *FileStore) Path() string { return fs.path }

// Load reads the token from disk.
func (fs *FileStore) Load() (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read session file: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return "", false, fmt.Errorf("failed to parse session file: %w", err)
	}
	if contents.SessionToken == "" {
		return "", false, nil
	}
	return contents.SessionToken, true, nil
}

// Save writes the token to disk with 0600 permissions.
func (fs *FileStore) Save(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.MarshalIndent(fileContents{SessionToken: token}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	logging.Session("session saved", zap.String("store", "file"))
	return nil
}

// Clear deletes the session file.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	logging.Session("session cleared", zap.String("store", "file"))
	return nil
}

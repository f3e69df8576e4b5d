package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lifewood/internal/models"
)

// TokenStore persists the admin bearer token and profile between calls.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Admin(ctx context.Context) (*models.Admin, error)
	Save(ctx context.Context, token string, admin *models.Admin) error
	Clear(ctx context.Context) error
}

// MemoryTokenStore keeps credentials in memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	admin *models.Admin
}

// NewMemoryTokenStore returns an empty store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Admin(context.Context) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, token string, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.admin = token, admin
	return nil
}

func (s *MemoryTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.admin = "", nil
	return nil
}

type tokenFile struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin,omitempty"`
}

// FileTokenStore keeps credentials in a JSON file readable only by the
// owner. A missing file means signed out.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore returns a store backed by path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath is ~/.config/lifewood/token.json.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lifewood", "token.json"), nil
}

func (s *FileTokenStore) read() (tokenFile, error) {
	var f tokenFile
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read token file: %w", err)
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return tokenFile{}, fmt.Errorf("parse token file: %w", err)
	}
	return f, nil
}

func (s *FileTokenStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	return f.Token, err
}

func (s *FileTokenStore) Admin(context.Context) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	return f.Admin, err
}

func (s *FileTokenStore) Save(_ context.Context, token string, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(tokenFile{Token: token, Admin: admin})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"hireflow/internal/domain/auth"
)

// FileStore хранит учетные данные в JSON файле с правами 0600.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore создает файловое хранилище по указанному пути.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type fileRecord map[string]json.RawMessage

func (s *FileStore) Load(ctx context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, ErrNotFound
		}
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var record fileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	var creds Credentials
	if raw, ok := record[KeyToken]; ok {
		if err := json.Unmarshal(raw, &creds.Token); err != nil {
			return Credentials{}, fmt.Errorf("decode token: %w", err)
		}
	}
	if creds.Token == "" {
		return Credentials{}, ErrNotFound
	}
	if raw, ok := record[KeyUser]; ok && string(raw) != "null" {
		var user auth.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return Credentials{}, fmt.Errorf("decode user: %w", err)
		}
		creds.User = &user
	}
	return creds, nil
}

func (s *FileStore) Save(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := fileRecord{}
	token, err := json.Marshal(creds.Token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	record[KeyToken] = token
	if creds.User != nil {
		user, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		record[KeyUser] = user
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"sync"

	"hireflow/internal/domain/auth"
)

// MemoryStore хранит учетные данные в памяти процесса.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]any
}

// NewMemoryStore создает хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

func (s *MemoryStore) Load(ctx context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, _ := s.values[KeyToken].(string)
	if token == "" {
		return Credentials{}, ErrNotFound
	}
	creds := Credentials{Token: token}
	if user, ok := s.values[KeyUser].(auth.User); ok {
		creds.User = &user
	}
	return creds, nil
}

func (s *MemoryStore) Save(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyToken] = creds.Token
	delete(s.values, KeyUser)
	if creds.User != nil {
		s.values[KeyUser] = *creds.User
	}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, KeyToken)
	delete(s.values, KeyUser)
	return nil
}

// Keys returns the keys currently held.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

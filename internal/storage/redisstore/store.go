package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hireflow/internal/domain/auth"
	"hireflow/internal/storage"
)

// Store хранит учетные данные в Redis под ключами <prefix>:token и <prefix>:user.
type Store struct {
	client *redis.Client
	prefix string
}

// New создает хранилище поверх готового клиента Redis.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "hireflow"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(name string) string {
	return s.prefix + ":" + name
}

func (s *Store) Load(ctx context.Context) (storage.Credentials, error) {
	values, err := s.client.MGet(ctx, s.key(storage.KeyToken), s.key(storage.KeyUser)).Result()
	if err != nil {
		return storage.Credentials{}, fmt.Errorf("redis load credentials: %w", err)
	}
	token, _ := values[0].(string)
	if token == "" {
		return storage.Credentials{}, storage.ErrNotFound
	}
	creds := storage.Credentials{Token: token}
	if raw, ok := values[1].(string); ok && raw != "" {
		var user auth.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return storage.Credentials{}, fmt.Errorf("decode user: %w", err)
		}
		creds.User = &user
	}
	return creds, nil
}

func (s *Store) Save(ctx context.Context, creds storage.Credentials) error {
	var user []byte
	if creds.User != nil {
		encoded, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		user = encoded
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(storage.KeyToken), creds.Token, 0)
		if user != nil {
			pipe.Set(ctx, s.key(storage.KeyUser), user, 0)
		} else {
			pipe.Del(ctx, s.key(storage.KeyUser))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save credentials: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.client.Del(ctx, s.key(storage.KeyToken), s.key(storage.KeyUser)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis clear credentials: %w", err)
	}
	return nil
}

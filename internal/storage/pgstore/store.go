package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"hireflow/internal/domain/auth"
	"hireflow/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store хранит учетные данные в таблице client_state.
type Store struct {
	db     *sql.DB
	prefix string
}

// New создает хранилище в Postgres. Ключи пишутся как <prefix>:token и <prefix>:user.
func New(db *sql.DB, prefix string) *Store {
	if prefix == "" {
		prefix = "hireflow"
	}
	return &Store{db: db, prefix: prefix}
}

// EnsureSchema создает таблицу, если ее еще нет.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create client_state: %w", err)
	}
	return nil
}

func (s *Store) keys() []string {
	return []string{s.prefix + ":" + storage.KeyToken, s.prefix + ":" + storage.KeyUser}
}

func (s *Store) Load(ctx context.Context) (storage.Credentials, error) {
	const query = `
		SELECT key, value
		FROM client_state
		WHERE key = ANY($1)
	`
	keys := s.keys()
	rows, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return storage.Credentials{}, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()
	values := make(map[string]string, 2)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return storage.Credentials{}, fmt.Errorf("scan credentials: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return storage.Credentials{}, fmt.Errorf("iterate credentials: %w", err)
	}
	token := values[keys[0]]
	if token == "" {
		return storage.Credentials{}, storage.ErrNotFound
	}
	creds := storage.Credentials{Token: token}
	if raw := values[keys[1]]; raw != "" {
		var user auth.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return storage.Credentials{}, fmt.Errorf("decode user: %w", err)
		}
		creds.User = &user
	}
	return creds, nil
}

func (s *Store) Save(ctx context.Context, creds storage.Credentials) (err error) {
	const upsert = `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	keys := s.keys()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save credentials: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, upsert, keys[0], creds.Token); err != nil {
		return wrapPQ("save token", err)
	}
	if creds.User != nil {
		encoded, encErr := json.Marshal(creds.User)
		if encErr != nil {
			err = fmt.Errorf("encode user: %w", encErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, upsert, keys[1], string(encoded)); err != nil {
			return wrapPQ("save user", err)
		}
	} else if _, err = tx.ExecContext(ctx, `DELETE FROM client_state WHERE key = $1`, keys[1]); err != nil {
		return wrapPQ("drop user", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ANY($1)`, pq.Array(s.keys())); err != nil {
		return wrapPQ("clear credentials", err)
	}
	return nil
}

func wrapPQ(op string, err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %s (%s): %w", op, pgErr.Message, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

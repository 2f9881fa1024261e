package storage

import (
	"context"
	"errors"

	"hireflow/internal/domain/auth"
)

// Фиксированные ключи долговременного хранилища клиента.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound сообщает, что сохраненных учетных данных нет.
var ErrNotFound = errors.New("credentials not found")

// Credentials хранит токен и денормализованный объект пользователя.
// Они записываются и удаляются только вместе.
type Credentials struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user,omitempty"`
}

// CredentialStore хранит учетные данные между запусками.
// Clear должен быть идемпотентным.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

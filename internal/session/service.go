package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
	"hireflow/internal/security"
	"hireflow/internal/storage"
)

// ErrUnauthenticated сообщает, что токен не удалось декодировать или он истек.
var ErrUnauthenticated = common.NewError(common.CodeUnauthorized, "Your session is invalid or has expired. Please log in again.", nil)

// Snapshot описывает состояние сессии в момент чтения.
type Snapshot struct {
	Resolved      bool
	Authenticated bool
	Session       auth.Session
	User          *auth.User
	Generation    uint64
}

// Options настраивает сервис сессии.
type Options struct {
	Logger           *slog.Logger
	Clock            func() time.Time
	BootstrapTimeout time.Duration
	// Navigate получает домашний маршрут роли после успешного Establish.
	Navigate func(path string)
}

// Service единственный владелец токена и производной от него личности.
// Другие компоненты только читают состояние.
type Service struct {
	store            storage.CredentialStore
	logger           *slog.Logger
	clock            func() time.Time
	bootstrapTimeout time.Duration
	navigate         func(path string)

	writeMu sync.Mutex

	mu            sync.RWMutex
	token         string
	temporary     string
	session       auth.Session
	user          *auth.User
	authenticated bool
	resolved      bool
	generation    uint64

	bootOnce  sync.Once
	readyOnce sync.Once
	ready     chan struct{}
}

// NewService создает сервис поверх долговременного хранилища.
func NewService(store storage.CredentialStore, opts Options) *Service {
	s := &Service{
		store:            store,
		logger:           opts.Logger,
		clock:            opts.Clock,
		bootstrapTimeout: opts.BootstrapTimeout,
		navigate:         opts.Navigate,
		ready:            make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.bootstrapTimeout <= 0 {
		s.bootstrapTimeout = 3 * time.Second
	}
	return s
}

// Bootstrap загружает сохраненный токен один раз за время жизни процесса.
// Результат всегда разрешен: либо валидная сессия, либо ее отсутствие.
func (s *Service) Bootstrap(ctx context.Context) Snapshot {
	s.bootOnce.Do(func() {
		s.bootstrap(ctx)
	})
	return s.Snapshot()
}

func (s *Service) bootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.bootstrapTimeout)
	defer cancel()

	type loadResult struct {
		creds storage.Credentials
		err   error
	}
	results := make(chan loadResult, 1)
	go func() {
		creds, err := s.store.Load(ctx)
		results <- loadResult{creds: creds, err: err}
	}()

	var loaded loadResult
	select {
	case loaded = <-results:
	case <-ctx.Done():
		loaded = loadResult{err: ctx.Err()}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	defer s.markResolved()

	if s.isAuthenticated() {
		// Establish ran while the store was being read.
		return
	}
	if loaded.err != nil {
		if !errors.Is(loaded.err, storage.ErrNotFound) {
			s.logger.Warn("session bootstrap failed", slog.String("error", loaded.err.Error()))
		}
		return
	}
	sess, err := s.decode(loaded.creds.Token)
	if err != nil {
		s.logger.Info("stored session rejected", slog.String("reason", err.Error()))
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.logger.Warn("clear rejected session failed", slog.String("error", clearErr.Error()))
		}
		return
	}
	s.setIdentity(loaded.creds.Token, sess, loaded.creds.User)
	s.logger.Info("session restored", slog.String("role", string(sess.Role)), slog.Time("expires_at", sess.ExpiresAt))
}

// Establish сохраняет токен, декодирует его и устанавливает личность.
// Невалидный или истекший токен сразу удаляется, возвращается ErrUnauthenticated.
func (s *Service) Establish(ctx context.Context, token string, user *auth.User) (auth.Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	defer s.markResolved()

	if err := s.store.Save(ctx, storage.Credentials{Token: token, User: user}); err != nil {
		return auth.Session{}, fmt.Errorf("persist session: %w", err)
	}
	sess, err := s.decode(token)
	if err != nil {
		s.logger.Info("session rejected", slog.String("reason", err.Error()))
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.logger.Warn("clear rejected session failed", slog.String("error", clearErr.Error()))
		}
		s.resetIdentity()
		return auth.Session{}, ErrUnauthenticated
	}
	s.setIdentity(token, sess, user)
	s.logger.Info("session established", slog.String("role", string(sess.Role)), slog.Time("expires_at", sess.ExpiresAt))
	if s.navigate != nil {
		s.navigate(auth.HomeFor(sess.Role))
	}
	return sess, nil
}

// Clear удаляет токен и личность. Сетевых вызовов нет, повторный вызов безопасен.
func (s *Service) Clear(ctx context.Context) error {
	return s.clear(ctx, "logout")
}

func (s *Service) clear(ctx context.Context, reason string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	defer s.markResolved()

	wasAuthenticated := s.isAuthenticated()
	s.resetIdentity()
	s.DiscardTemporary()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if wasAuthenticated {
		s.logger.Info("session cleared", slog.String("reason", reason))
	}
	return nil
}

// HandleUnauthorized is the interceptor hook for 401 answers. It only
// clears the session when the rejected token is the session token.
func (s *Service) HandleUnauthorized(ctx context.Context, token string) {
	s.mu.RLock()
	current := s.token
	s.mu.RUnlock()
	if token == "" || token != current {
		return
	}
	if err := s.clear(context.WithoutCancel(ctx), "rejected"); err != nil {
		s.logger.Warn("clear rejected session failed", slog.String("error", err.Error()))
	}
}

// Token returns the token the interceptor should attach. A temporary token
// takes precedence. An expired session is cleared on read.
func (s *Service) Token(ctx context.Context) string {
	s.mu.RLock()
	temporary, token, sess, authenticated := s.temporary, s.token, s.session, s.authenticated
	s.mu.RUnlock()
	if temporary != "" {
		return temporary
	}
	if !authenticated {
		return ""
	}
	if !sess.Valid(s.clock()) {
		if err := s.clear(context.WithoutCancel(ctx), "expired"); err != nil {
			s.logger.Warn("clear expired session failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return token
}

// UseTemporary holds a mid-flow token in memory. It is never persisted and
// never decoded into identity.
func (s *Service) UseTemporary(token string) {
	s.mu.Lock()
	s.temporary = token
	s.mu.Unlock()
}

func (s *Service) DiscardTemporary() {
	s.mu.Lock()
	s.temporary = ""
	s.mu.Unlock()
}

func (s *Service) HasTemporary() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temporary != ""
}

// Current returns the session when one is present and not expired.
func (s *Service) Current() (auth.Session, bool) {
	snap := s.Snapshot()
	return snap.Session, snap.Authenticated
}

// Snapshot reads the state. An expired session reads as absent.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		Resolved:      s.resolved,
		Authenticated: s.authenticated,
		Session:       s.session,
		User:          s.user,
		Generation:    s.generation,
	}
	s.mu.RUnlock()
	if snap.Authenticated && !snap.Session.Valid(s.clock()) {
		if err := s.clear(context.Background(), "expired"); err != nil {
			s.logger.Warn("clear expired session failed", slog.String("error", err.Error()))
		}
		return s.Snapshot()
	}
	return snap
}

// Ready is closed once the session state has been resolved.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

func (s *Service) decode(token string) (auth.Session, error) {
	if token == "" {
		return auth.Session{}, errors.New("empty token")
	}
	sess, err := security.SessionFromToken(token)
	if err != nil {
		return auth.Session{}, err
	}
	if !sess.Valid(s.clock()) {
		return auth.Session{}, errors.New("token expired")
	}
	return sess, nil
}

func (s *Service) isAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Service) setIdentity(token string, sess auth.Session, user *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.session = sess
	if user != nil {
		copied := *user
		s.user = &copied
	} else {
		s.user = nil
	}
	s.authenticated = true
	s.generation++
}

func (s *Service) resetIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.authenticated || s.token != ""
	s.token = ""
	s.session = auth.Session{}
	s.user = nil
	s.authenticated = false
	if changed {
		s.generation++
	}
}

func (s *Service) markResolved() {
	s.mu.Lock()
	s.resolved = true
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

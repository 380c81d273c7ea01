// Package session owns the authenticated identity of the companion: the bearer
// token, the confirmed user profile and the bootstrap that links the two.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"planner/internal/auth"
	"planner/internal/model"
	"planner/internal/repository"

	log "github.com/sirupsen/logrus"
)

type State int

const (
	Unauthenticated State = iota
	// Pending holds a token whose owner has not been confirmed yet.
	Pending
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrNoToken    = errors.New("session: no token")
	ErrSuperseded = errors.New("session: superseded by a newer login or logout")
	ErrClosed     = errors.New("session: closed")
)

type ProfileFetcher interface {
	Me(ctx context.Context) (model.User, error)
}

type Authenticator interface {
	ProfileFetcher
	Login(ctx context.Context, email, password string) (model.Token, error)
}

type Snapshot struct {
	State    State       `json:"state"`
	User     *model.User `json:"user"`
	HasToken bool        `json:"has_token"`
}

// Session is safe for concurrent use. The gateway reads the token through it
// and reports rejected tokens back via Invalidate.
type Session struct {
	mu      sync.Mutex
	storage repository.LocalStorage
	logger  log.FieldLogger
	token   string
	user    *model.User
	state   State
	epoch   uint64
	closed  bool
	now     func() time.Time
}

func New(storage repository.LocalStorage, logger log.FieldLogger) *Session {
	return &Session{storage: storage, logger: logger, now: time.Now}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) HasToken() bool {
	return s.Token() != ""
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Authenticated
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns a copy of the confirmed profile, or nil.
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userCopy()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, User: s.userCopy(), HasToken: s.token != ""}
}

func (s *Session) userCopy() *model.User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Bootstrap resolves a persisted token into a confirmed user. A token that
// fails confirmation is removed. A Login or Logout that happens while the
// profile is in flight wins over the bootstrap result. A cancelled ctx leaves
// the session Pending with the token kept.
func (s *Session) Bootstrap(ctx context.Context, fetcher ProfileFetcher) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	token, ok, err := s.storage.GetItem(ctx, repository.TokenKey)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("read persisted token: %w", err)
	}
	if !ok || token == "" {
		s.resetLocked()
		s.mu.Unlock()
		s.logger.Debug("no persisted token, session starts unauthenticated")
		return nil
	}

	if claims, err := auth.Inspect(token); err == nil && claims.Expired(s.now()) {
		err := s.clearLocked(ctx)
		s.mu.Unlock()
		s.logger.Info("persisted token expired, discarded without confirmation")
		return err
	}

	s.epoch++
	epoch := s.epoch
	s.token = token
	s.user = nil
	s.state = Pending
	s.mu.Unlock()

	user, fetchErr := fetcher.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Debug("bootstrap result discarded, session changed meanwhile")
		return nil
	}
	if fetchErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.WithError(fetchErr).Warn("persisted token rejected, clearing session")
		return s.clearLocked(context.WithoutCancel(ctx))
	}
	s.user = &user
	s.state = Authenticated
	s.logger.WithField("user_id", user.ID).Info("session restored")
	return nil
}

// Login exchanges credentials for a token, persists it and confirms the profile.
func (s *Session) Login(ctx context.Context, a Authenticator, email, password string) (model.User, error) {
	tok, err := a.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.User{}, ErrClosed
	}
	if err := s.storage.SetItem(ctx, repository.TokenKey, tok.AccessToken); err != nil {
		s.mu.Unlock()
		return model.User{}, fmt.Errorf("persist token: %w", err)
	}
	s.epoch++
	epoch := s.epoch
	s.token = tok.AccessToken
	s.user = nil
	s.state = Pending
	s.mu.Unlock()

	user, err := a.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.epoch == epoch {
			if clearErr := s.clearLocked(context.WithoutCancel(ctx)); clearErr != nil {
				s.logger.WithError(clearErr).Warn("failed to clear token after login")
			}
		}
		return model.User{}, err
	}
	if s.epoch != epoch {
		return model.User{}, ErrSuperseded
	}
	s.user = &user
	s.state = Authenticated
	s.logger.WithField("user_id", user.ID).Info("logged in")
	return user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.logger.Info("logged out")
	return s.clearLocked(ctx)
}

// Invalidate drops token if it is still the current one. A rejection of a
// stale token never clears a newer login.
func (s *Session) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || token != s.token || s.closed {
		return
	}
	if err := s.clearLocked(context.Background()); err != nil {
		s.logger.WithError(err).Warn("failed to remove rejected token")
	}
}

// Close releases the storage. The persisted token survives for the next start.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.resetLocked()
	return s.storage.Close()
}

func (s *Session) clearLocked(ctx context.Context) error {
	s.resetLocked()
	if err := s.storage.RemoveItem(ctx, repository.TokenKey); err != nil {
		return fmt.Errorf("remove persisted token: %w", err)
	}
	return nil
}

func (s *Session) resetLocked() {
	s.epoch++
	s.token = ""
	s.user = nil
	s.state = Unauthenticated
}

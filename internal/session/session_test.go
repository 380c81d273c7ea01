package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner/internal/apitest"
	"planner/internal/auth"
	"planner/internal/gateway"
	"planner/internal/model"
	"planner/internal/repository"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Me(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

type fetchFunc func(ctx context.Context) (model.User, error)

func (f fetchFunc) Me(ctx context.Context) (model.User, error) { return f(ctx) }

func newSession(t *testing.T, token string) (*Session, *repository.MemoryStorage) {
	t.Helper()
	storage := repository.NewMemoryStorage()
	if token != "" {
		require.NoError(t, storage.SetItem(context.Background(), repository.TokenKey, token))
	}
	logger, _ := logtest.NewNullLogger()
	return New(storage, logger), storage
}

func storedToken(t *testing.T, s *repository.MemoryStorage) (string, bool) {
	t.Helper()
	v, ok, err := s.GetItem(context.Background(), repository.TokenKey)
	require.NoError(t, err)
	return v, ok
}

func TestBootstrap_NoToken(t *testing.T) {
	sess, _ := newSession(t, "")
	fetcher := &mockFetcher{}

	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	assert.Equal(t, Unauthenticated, sess.State())
	assert.False(t, sess.HasToken())
	assert.Nil(t, sess.User())
	fetcher.AssertNotCalled(t, "Me", mock.Anything)
}

func TestBootstrap_ConfirmsStoredToken(t *testing.T) {
	sess, _ := newSession(t, "opaque-token")
	user := model.User{ID: 1, Email: apitest.AdminEmail}
	fetcher := &mockFetcher{}
	fetcher.On("Me", mock.Anything).Return(user, nil).Once()

	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	snap := sess.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.True(t, snap.HasToken)
	require.NotNil(t, snap.User)
	assert.Equal(t, apitest.AdminEmail, snap.User.Email)
	fetcher.AssertExpectations(t)
}

func TestBootstrap_FailedFetchClearsToken(t *testing.T) {
	sess, storage := newSession(t, "opaque-token")
	fetcher := &mockFetcher{}
	fetcher.On("Me", mock.Anything).Return(model.User{}, errors.New("connection refused")).Once()

	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	assert.Equal(t, Unauthenticated, sess.State())
	assert.False(t, sess.HasToken())
	_, ok := storedToken(t, storage)
	assert.False(t, ok)
}

func TestBootstrap_ExpiredTokenSkipsNetwork(t *testing.T) {
	expired, err := auth.GenerateToken("1", []byte("secret"), -time.Hour)
	require.NoError(t, err)
	sess, storage := newSession(t, expired)
	fetcher := &mockFetcher{}

	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	assert.Equal(t, Unauthenticated, sess.State())
	_, ok := storedToken(t, storage)
	assert.False(t, ok)
	fetcher.AssertNotCalled(t, "Me", mock.Anything)
}

func TestBootstrap_PendingWhileFetching(t *testing.T) {
	sess, _ := newSession(t, "opaque-token")
	var seen Snapshot
	fetcher := fetchFunc(func(ctx context.Context) (model.User, error) {
		seen = sess.Snapshot()
		return model.User{ID: 1}, nil
	})

	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	assert.Equal(t, Pending, seen.State)
	assert.True(t, seen.HasToken)
	assert.Nil(t, seen.User)
	assert.True(t, sess.IsAuthenticated())
}

func TestBootstrap_CancelledKeepsToken(t *testing.T) {
	sess, storage := newSession(t, "opaque-token")
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := fetchFunc(func(ctx context.Context) (model.User, error) {
		cancel()
		return model.User{}, ctx.Err()
	})

	err := sess.Bootstrap(ctx, fetcher)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, Pending, sess.State())
	v, ok := storedToken(t, storage)
	assert.True(t, ok)
	assert.Equal(t, "opaque-token", v)
}

func TestBootstrap_LogoutWins(t *testing.T) {
	sess, storage := newSession(t, "opaque-token")
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := fetchFunc(func(ctx context.Context) (model.User, error) {
		close(started)
		<-release
		return model.User{ID: 1}, nil
	})

	done := make(chan error, 1)
	go func() { done <- sess.Bootstrap(context.Background(), fetcher) }()

	<-started
	require.NoError(t, sess.Logout(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, Unauthenticated, sess.State())
	assert.Nil(t, sess.User())
	_, ok := storedToken(t, storage)
	assert.False(t, ok)
}

func TestInvalidate_OnlyCurrentToken(t *testing.T) {
	sess, storage := newSession(t, "current")
	fetcher := &mockFetcher{}
	fetcher.On("Me", mock.Anything).Return(model.User{ID: 1}, nil)
	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	sess.Invalidate("stale")
	assert.True(t, sess.IsAuthenticated())
	v, _ := storedToken(t, storage)
	assert.Equal(t, "current", v)

	sess.Invalidate("current")
	assert.Equal(t, Unauthenticated, sess.State())
	_, ok := storedToken(t, storage)
	assert.False(t, ok)
}

func TestClose_KeepsPersistedToken(t *testing.T) {
	sess, storage := newSession(t, "opaque-token")
	fetcher := &mockFetcher{}
	fetcher.On("Me", mock.Anything).Return(model.User{ID: 1}, nil)
	require.NoError(t, sess.Bootstrap(context.Background(), fetcher))

	require.NoError(t, sess.Close())
	assert.False(t, sess.HasToken())
	assert.ErrorIs(t, sess.Logout(context.Background()), ErrClosed)

	_, _, err := storage.GetItem(context.Background(), repository.TokenKey)
	assert.ErrorIs(t, err, repository.ErrStorageClosed)
}

func apiSession(t *testing.T) (*Session, *repository.MemoryStorage, *gateway.Client, *apitest.Fake) {
	t.Helper()
	fake := apitest.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)
	sess, storage := newSession(t, "")
	logger, _ := logtest.NewNullLogger()
	client := gateway.New(apitest.BaseURL(srv), sess, gateway.WithLogger(logger))
	return sess, storage, client, fake
}

func TestLogin_AgainstAPI(t *testing.T) {
	sess, storage, client, _ := apiSession(t)

	user, err := sess.Login(context.Background(), client, apitest.AdminEmail, apitest.AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, apitest.AdminID, user.ID)
	assert.True(t, sess.IsAuthenticated())

	v, ok := storedToken(t, storage)
	assert.True(t, ok)
	assert.Equal(t, sess.Token(), v)
}

func TestLogin_BadCredentialsLeaveSessionAlone(t *testing.T) {
	sess, storage, client, _ := apiSession(t)

	_, err := sess.Login(context.Background(), client, apitest.AdminEmail, "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrUnauthorized))
	assert.Equal(t, "Incorrect email or password", gateway.Message(err))
	assert.Equal(t, Unauthenticated, sess.State())
	_, ok := storedToken(t, storage)
	assert.False(t, ok)
}

func TestBootstrap_RejectedTokenAgainstAPI(t *testing.T) {
	sess, storage, client, fake := apiSession(t)
	require.NoError(t, storage.SetItem(context.Background(), repository.TokenKey, fake.TokenFor(apitest.AdminID)))
	fake.RotateSecret()

	require.NoError(t, sess.Bootstrap(context.Background(), client))

	assert.Equal(t, Unauthenticated, sess.State())
	_, ok := storedToken(t, storage)
	assert.False(t, ok)
}

func TestBootstrap_ValidTokenAgainstAPI(t *testing.T) {
	sess, storage, client, fake := apiSession(t)
	require.NoError(t, storage.SetItem(context.Background(), repository.TokenKey, fake.TokenFor(apitest.AdminID)))

	require.NoError(t, sess.Bootstrap(context.Background(), client))

	require.True(t, sess.IsAuthenticated())
	assert.Equal(t, apitest.AdminEmail, sess.User().Email)
}

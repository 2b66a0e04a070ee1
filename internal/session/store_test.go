package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"calculator-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore() *Store {
	return NewStore(storage.NewMemoryUsers(), WithHashCost(bcrypt.MinCost))
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	u, err := s.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = s.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterLeavesSessionUnchanged(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	_, ok := s.Current(ctx)
	assert.False(t, ok, "registration must not log the user in")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, tc := range []struct{ user, pass string }{{"", "pw"}, {"carol", ""}, {"", ""}} {
		_, err := s.Register(ctx, tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrInvalidUser, "user=%q pass=%q", tc.user, tc.pass)
	}

	_, err := s.Register(ctx, "dave", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestLoginLogoutCycle(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	u, err := s.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, User{Username: "bob"}, u)

	cur, ok := s.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "bob", cur.Username)

	out, ok := s.Logout(ctx)
	require.True(t, ok)
	assert.Equal(t, "bob", out.Username)

	_, ok = s.Current(ctx)
	assert.False(t, ok)
}

func TestLogoutWhenLoggedOutIsNoop(t *testing.T) {
	s := newTestStore()

	u, ok := s.Logout(context.Background())
	assert.False(t, ok)
	assert.Equal(t, User{}, u)
}

func TestFailedLoginKeepsCurrentUser(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Register(ctx, "bob", "pw")
	require.NoError(t, err)
	_, err = s.Register(ctx, "eve", "secret")
	require.NoError(t, err)
	_, err = s.Login(ctx, "bob", "pw")
	require.NoError(t, err)

	_, err = s.Login(ctx, "eve", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	cur, ok := s.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "bob", cur.Username)
}

func TestReloginReplacesSession(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, []Credentials{{"a", "1"}, {"b", "2"}}))

	_, err := s.Login(ctx, "a", "1")
	require.NoError(t, err)
	_, err = s.Login(ctx, "b", "2")
	require.NoError(t, err)

	cur, ok := s.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "b", cur.Username)
}

func TestSeedSkipsExistingUsers(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	seed := []Credentials{{Username: "admin", Password: "test1234"}}
	require.NoError(t, s.Seed(ctx, seed))
	require.NoError(t, s.Seed(ctx, seed))

	_, err := s.Login(ctx, "admin", "test1234")
	assert.NoError(t, err)

	err = s.Seed(ctx, []Credentials{{Username: "", Password: "x"}})
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestConcurrentLoginsLeaveConsistentSession(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	names := []string{"u0", "u1", "u2", "u3"}
	for _, n := range names {
		_, err := s.Register(ctx, n, "pw")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			_, _ = s.Login(ctx, n, "pw")
			_, _ = s.Current(ctx)
		}(names[i%len(names)])
	}
	wg.Wait()

	cur, ok := s.Current(ctx)
	require.True(t, ok)
	assert.Contains(t, names, cur.Username)
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u storage.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (storage.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(storage.User), args.Error(1)
}

func TestRepositoryFailuresAreNotCredentialErrors(t *testing.T) {
	repo := new(mockRepo)
	boom := errors.New("disk on fire")
	repo.On("FindByUsername", mock.Anything, "alice").Return(storage.User{}, boom)
	repo.On("Create", mock.Anything, mock.AnythingOfType("storage.User")).Return(boom)

	s := NewStore(repo, WithHashCost(bcrypt.MinCost))
	ctx := context.Background()

	_, err := s.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserExists)

	repo.AssertExpectations(t)
}

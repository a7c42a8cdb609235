package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/classroom-booking-backend/internal/auth"
)

type fakeRepo struct {
	byID       map[string]*User
	byUsername map[string]*User
	nextID     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:       make(map[string]*User),
		byUsername: make(map[string]*User),
	}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	if _, taken := r.byUsername[u.Username]; taken {
		return ErrUsernameTaken
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	stored := *u
	r.byID[u.ID] = &stored
	r.byUsername[u.Username] = &stored
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*User, int, error) {
	var out []*User
	for _, u := range r.byID {
		copied := *u
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, u *User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	stored := *u
	r.byID[u.ID] = &stored
	r.byUsername[u.Username] = &stored
	return nil
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash != "hash:"+plain {
		return ErrInvalidCredentials
	}
	return nil
}

var _ auth.PasswordHasher = plainHasher{}

func TestRegister(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})
	ctx := context.Background()

	t.Run("success with normalized username", func(t *testing.T) {
		u, err := svc.Register(ctx, "Alice Chen", "  Alice.Chen ", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "alice.chen", u.Username)
		assert.Equal(t, RoleStudent, u.Role)
		assert.True(t, u.Active)
		assert.NotEqual(t, "supersecret", u.PasswordHash)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other Alice", "ALICE.CHEN", "supersecret")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "Bob", "bob", "short")
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.Register(ctx, "   ", "bob", "supersecret")
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice", "supersecret")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		u, err := svc.Login(ctx, "Alice", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "not-it")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "supersecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		active := false
		_, err := svc.Update(ctx, registered.ID, UpdateRequest{Active: &active})
		require.NoError(t, err)

		_, err = svc.Login(ctx, "alice", "supersecret")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice", "supersecret")
	require.NoError(t, err)

	t.Run("promote to admin", func(t *testing.T) {
		role := "admin"
		updated, err := svc.Update(ctx, u.ID, UpdateRequest{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, updated.Role)
		assert.True(t, updated.IsAdmin())
	})

	t.Run("invalid role", func(t *testing.T) {
		role := "superuser"
		_, err := svc.Update(ctx, u.ID, UpdateRequest{Role: &role})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("unknown user", func(t *testing.T) {
		role := "staff"
		_, err := svc.Update(ctx, "missing", UpdateRequest{Role: &role})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

package accounts_test

import (
	"context"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown key is an invalid token", func(t *testing.T) {
		tokens := new(MockTokens)
		users := new(MockUsers)

		tokens.On("GetByKey", ctx, "nope").
			Return(nil, repository.NewRecordNotFound()).Once()

		authority := accounts.NewTokenAuthority(tokens)
		auther := accounts.NewAuthenticator(users, authority)

		_, _, err := auther.Authenticate(ctx, "nope")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
		tokens.AssertExpectations(t)
	})

	t.Run("orphaned token is an invalid token", func(t *testing.T) {
		tokens := new(MockTokens)
		users := new(MockUsers)

		userID := uuid.New()
		tokens.On("GetByKey", ctx, "orphan").
			Return(&accounts.AuthToken{Key: "orphan", UserID: userID}, nil).Once()
		users.On("GetByID", ctx, userID.String()).
			Return(nil, repository.NewRecordNotFound()).Once()

		authority := accounts.NewTokenAuthority(tokens)
		auther := accounts.NewAuthenticator(users, authority)

		_, _, err := auther.Authenticate(ctx, "orphan")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("inactive owner is rejected", func(t *testing.T) {
		tokens := new(MockTokens)
		users := new(MockUsers)

		userID := uuid.New()
		tokens.On("GetByKey", ctx, "key").
			Return(&accounts.AuthToken{Key: "key", UserID: userID}, nil).Once()
		users.On("GetByID", ctx, userID.String()).
			Return(&accounts.User{ID: userID, IsActive: false}, nil).Once()

		authority := accounts.NewTokenAuthority(tokens)
		auther := accounts.NewAuthenticator(users, authority)

		_, _, err := auther.Authenticate(ctx, "key")
		assert.ErrorIs(t, err, accounts.ErrUserInactive)
	})

	t.Run("fresh token resolves the principal", func(t *testing.T) {
		tokens := new(MockTokens)
		users := new(MockUsers)

		userID := uuid.New()
		last := now.Add(-time.Hour)
		user := &accounts.User{ID: userID, IsActive: true, LastLogin: &last}

		tokens.On("GetByKey", ctx, "key").
			Return(&accounts.AuthToken{Key: "key", UserID: userID}, nil).Once()
		users.On("GetByID", ctx, userID.String()).
			Return(user, nil).Once()

		authority := accounts.NewTokenAuthority(tokens).WithClock(fixedClock(now))
		auther := accounts.NewAuthenticator(users, authority)

		got, token, err := auther.Authenticate(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, userID, got.ID)
		assert.Equal(t, "key", token.Key)
	})

	t.Run("stale token is rotated mid request", func(t *testing.T) {
		tokens := new(MockTokens)
		users := new(MockUsers)

		userID := uuid.New()
		last := now.Add(-8 * 24 * time.Hour)
		user := &accounts.User{ID: userID, IsActive: true, LastLogin: &last}

		tokens.On("GetByKey", ctx, "stale").
			Return(&accounts.AuthToken{Key: "stale", UserID: userID}, nil).Once()
		users.On("GetByID", ctx, userID.String()).
			Return(user, nil).Once()
		tokens.On("DeleteByUser", ctx, userID).Return(nil).Once()
		tokens.On("Create", ctx, userID).
			Return(&accounts.AuthToken{Key: "fresh", UserID: userID}, nil).Once()

		authority := accounts.NewTokenAuthority(tokens).WithClock(fixedClock(now))
		auther := accounts.NewAuthenticator(users, authority)

		_, token, err := auther.Authenticate(ctx, "stale")
		require.NoError(t, err)
		assert.Equal(t, "fresh", token.Key)
		tokens.AssertExpectations(t)
	})

	t.Run("store failures are wrapped as internal", func(t *testing.T) {
		tokens := new(MockTokens)
		users := new(MockUsers)

		tokens.On("GetByKey", ctx, mock.Anything).
			Return(nil, goerrors.New("boom", goerrors.CategoryInternal)).Once()

		authority := accounts.NewTokenAuthority(tokens)
		auther := accounts.NewAuthenticator(users, authority)

		_, _, err := auther.Authenticate(ctx, "key")
		require.Error(t, err)
		assert.NotErrorIs(t, err, accounts.ErrInvalidToken)
	})
}

func TestEnsureLoginAllowed(t *testing.T) {
	base := func() *accounts.User {
		return &accounts.User{
			IsActive:   true,
			IsVerified: true,
		}
	}

	t.Run("nil user", func(t *testing.T) {
		assert.ErrorIs(t, accounts.EnsureLoginAllowed(nil), accounts.ErrUserNotFound)
	})

	t.Run("staff is rejected first", func(t *testing.T) {
		user := base()
		user.IsStaff = true
		user.IsActive = false
		user.IsVerified = false
		assert.ErrorIs(t, accounts.EnsureLoginAllowed(user), accounts.ErrStaffLoginBlocked)
	})

	t.Run("superuser is rejected", func(t *testing.T) {
		user := base()
		user.IsSuperuser = true
		assert.ErrorIs(t, accounts.EnsureLoginAllowed(user), accounts.ErrStaffLoginBlocked)
	})

	t.Run("blocked before unverified", func(t *testing.T) {
		user := base()
		user.IsActive = false
		user.IsVerified = false
		assert.ErrorIs(t, accounts.EnsureLoginAllowed(user), accounts.ErrAccountBlocked)
	})

	t.Run("unverified", func(t *testing.T) {
		user := base()
		user.IsVerified = false
		assert.ErrorIs(t, accounts.EnsureLoginAllowed(user), accounts.ErrEmailNotVerified)
	})

	t.Run("allowed", func(t *testing.T) {
		assert.NoError(t, accounts.EnsureLoginAllowed(base()))
	})
}

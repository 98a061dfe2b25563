package accounts_test

import (
	"context"
	"database/sql"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

func setupSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	migrations := migrate.NewMigrations()
	require.NoError(t, migrations.Discover(accounts.GetMigrationsFS()))

	migrator := migrate.NewMigrator(db, migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func registerTestUser(t *testing.T, repo accounts.RepositoryManager, email string) *accounts.User {
	t.Helper()

	user, err := repo.Users().Register(context.Background(), &accounts.User{
		FirstName:    "Pepe",
		Email:        email,
		PasswordHash: "old-hash",
		IsActive:     true,
		IsVerified:   true,
	})
	require.NoError(t, err)
	return user
}

func TestPasswordChangeInvalidatesChallenge(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)
	ctx := context.Background()

	user := registerTestUser(t, repo, "pepe@example.com")

	code, err := repo.Users().IssueChallenge(ctx, user)
	require.NoError(t, err)
	assert.True(t, repo.Users().ConsumeChallenge(user, code))

	require.NoError(t, repo.Users().SetPassword(ctx, user.ID, "new-hash"))

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.Nil(t, stored.OTP)
	assert.False(t, repo.Users().ConsumeChallenge(stored, code))
}

func TestIssueChallengeOverwritesPriorCode(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)
	ctx := context.Background()

	user := registerTestUser(t, repo, "pepe@example.com")

	first, err := repo.Users().IssueChallenge(ctx, user)
	require.NoError(t, err)

	var second int
	for {
		second, err = repo.Users().IssueChallenge(ctx, user)
		require.NoError(t, err)
		if second != first {
			break
		}
	}

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, stored.OTP)
	assert.Equal(t, second, *stored.OTP)
	assert.False(t, repo.Users().ConsumeChallenge(stored, first))
}

func TestSetPasswordUnknownUser(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)

	err := repo.Users().SetPassword(context.Background(), uuid.New(), "new-hash")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)

	registerTestUser(t, repo, "pepe@example.com")

	_, err := repo.Users().Register(context.Background(), &accounts.User{
		FirstName: "Impostor",
		Email:     "pepe@example.com",
	})
	assert.Error(t, err)
}

func TestTrackSuccessfulLoginPersistsTimestamp(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)
	ctx := context.Background()

	user := registerTestUser(t, repo, "pepe@example.com")
	require.Nil(t, user.LastLogin)

	require.NoError(t, repo.Users().TrackSuccessfulLogin(ctx, user))
	require.NotNil(t, user.LastLogin)

	stored, err := repo.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
}

func TestTokensSingleTokenPerUser(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)
	ctx := context.Background()

	user := registerTestUser(t, repo, "pepe@example.com")

	token, err := repo.Tokens().Create(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, token.Key, 40)

	// the unique user_id constraint forbids a second active token
	_, err = repo.Tokens().Create(ctx, user.ID)
	assert.Error(t, err)

	require.NoError(t, repo.Tokens().DeleteByUser(ctx, user.ID))

	replacement, err := repo.Tokens().Create(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token.Key, replacement.Key)

	_, err = repo.Tokens().GetByKey(ctx, token.Key)
	assert.True(t, repository.IsRecordNotFound(err))

	found, err := repo.Tokens().GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, replacement.Key, found.Key)
}

func TestTokensUnknownLookups(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)
	ctx := context.Background()

	_, err := repo.Tokens().GetByKey(ctx, "no-such-key")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.Tokens().GetByUser(ctx, uuid.New())
	assert.True(t, repository.IsRecordNotFound(err))

	// revoking when no token exists is a no-op
	assert.NoError(t, repo.Tokens().DeleteByUser(ctx, uuid.New()))
}

func TestGroupAssignmentAtSignup(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := accounts.NewRepositoryManager(db)
	ctx := context.Background()

	user := registerTestUser(t, repo, "pepe@example.com")

	group, err := repo.Groups().GetOrCreateByName(ctx, accounts.DefaultGroupName)
	require.NoError(t, err)
	require.NoError(t, repo.Groups().Assign(ctx, user, group))

	// get-or-create is idempotent
	again, err := repo.Groups().GetOrCreateByName(ctx, accounts.DefaultGroupName)
	require.NoError(t, err)
	assert.Equal(t, group.ID, again.ID)
}

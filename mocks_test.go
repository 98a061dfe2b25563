package accounts_test

import (
	"context"
	"database/sql"
	"sync"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUsers implements accounts.Users. The embedded interface covers
// the repository surface the tests never touch; overridden methods go
// through testify.
type MockUsers struct {
	mock.Mock
	repository.Repository[*accounts.User]
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	out, _ := args.Get(0).(*accounts.User)
	return out, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, user)
	out, _ := args.Get(0).(*accounts.User)
	return out, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.User, error) {
	args := m.Called(ctx, tx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *accounts.User, criteria ...repository.InsertCriteria) (*accounts.User, error) {
	args := m.Called(ctx, record)
	out, _ := args.Get(0).(*accounts.User)
	return out, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.User, criteria ...repository.InsertCriteria) (*accounts.User, error) {
	args := m.Called(ctx, tx, record)
	out, _ := args.Get(0).(*accounts.User)
	return out, args.Error(1)
}

func (m *MockUsers) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) IssueChallenge(ctx context.Context, user *accounts.User) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}

func (m *MockUsers) IssueChallengeTx(ctx context.Context, tx bun.IDB, user *accounts.User) (int, error) {
	args := m.Called(ctx, tx, user)
	return args.Int(0), args.Error(1)
}

func (m *MockUsers) ConsumeChallenge(user *accounts.User, code int) bool {
	if user == nil || user.OTP == nil {
		return false
	}
	return *user.OTP == code
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *accounts.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *accounts.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) UpdateProfile(ctx context.Context, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, record)
	out, _ := args.Get(0).(*accounts.User)
	return out, args.Error(1)
}

func (m *MockUsers) UpdateProfileTx(ctx context.Context, tx bun.IDB, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, record)
	out, _ := args.Get(0).(*accounts.User)
	return out, args.Error(1)
}

// MockTokens implements accounts.Tokens through testify.
type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) GetByKey(ctx context.Context, key string) (*accounts.AuthToken, error) {
	args := m.Called(ctx, key)
	token, _ := args.Get(0).(*accounts.AuthToken)
	return token, args.Error(1)
}

func (m *MockTokens) GetByUser(ctx context.Context, userID uuid.UUID) (*accounts.AuthToken, error) {
	args := m.Called(ctx, userID)
	token, _ := args.Get(0).(*accounts.AuthToken)
	return token, args.Error(1)
}

func (m *MockTokens) Create(ctx context.Context, userID uuid.UUID) (*accounts.AuthToken, error) {
	args := m.Called(ctx, userID)
	token, _ := args.Get(0).(*accounts.AuthToken)
	return token, args.Error(1)
}

func (m *MockTokens) CreateTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*accounts.AuthToken, error) {
	args := m.Called(ctx, tx, userID)
	token, _ := args.Get(0).(*accounts.AuthToken)
	return token, args.Error(1)
}

func (m *MockTokens) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

// FakeTokens is an in-memory token store keyed by user. It mirrors the
// single-active-token invariant of the real table.
type FakeTokens struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*accounts.AuthToken
}

func NewFakeTokens() *FakeTokens {
	return &FakeTokens{byUser: map[uuid.UUID]*accounts.AuthToken{}}
}

func (f *FakeTokens) GetByKey(ctx context.Context, key string) (*accounts.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.byUser {
		if token.Key == key {
			return token, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (f *FakeTokens) GetByUser(ctx context.Context, userID uuid.UUID) (*accounts.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token, ok := f.byUser[userID]; ok {
		return token, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *FakeTokens) Create(ctx context.Context, userID uuid.UUID) (*accounts.AuthToken, error) {
	key, err := accounts.GenerateTokenKey()
	if err != nil {
		return nil, err
	}

	token := &accounts.AuthToken{
		Key:    key,
		UserID: userID,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[userID] = token
	return token, nil
}

func (f *FakeTokens) CreateTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*accounts.AuthToken, error) {
	return f.Create(ctx, userID)
}

func (f *FakeTokens) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byUser, userID)
	return nil
}

func (f *FakeTokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	return f.DeleteByUser(ctx, userID)
}

// MockGroups implements accounts.Groups.
type MockGroups struct {
	mock.Mock
	repository.Repository[*accounts.Group]
}

func (m *MockGroups) GetOrCreateByName(ctx context.Context, name string) (*accounts.Group, error) {
	args := m.Called(ctx, name)
	group, _ := args.Get(0).(*accounts.Group)
	return group, args.Error(1)
}

func (m *MockGroups) GetOrCreateByNameTx(ctx context.Context, tx bun.IDB, name string) (*accounts.Group, error) {
	args := m.Called(ctx, tx, name)
	group, _ := args.Get(0).(*accounts.Group)
	return group, args.Error(1)
}

func (m *MockGroups) Assign(ctx context.Context, user *accounts.User, group *accounts.Group) error {
	args := m.Called(ctx, user, group)
	return args.Error(0)
}

func (m *MockGroups) AssignTx(ctx context.Context, tx bun.IDB, user *accounts.User, group *accounts.Group) error {
	args := m.Called(ctx, tx, user, group)
	return args.Error(0)
}

// MockRepositoryManager hands back the configured repositories and
// runs transaction bodies against a zero tx, which the mocks ignore.
type MockRepositoryManager struct {
	users  accounts.Users
	tokens accounts.Tokens
	groups accounts.Groups
}

func NewMockRepositoryManager(users accounts.Users, tokens accounts.Tokens, groups accounts.Groups) *MockRepositoryManager {
	return &MockRepositoryManager{
		users:  users,
		tokens: tokens,
		groups: groups,
	}
}

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() accounts.Users   { return m.users }
func (m *MockRepositoryManager) Tokens() accounts.Tokens { return m.tokens }
func (m *MockRepositoryManager) Groups() accounts.Groups { return m.groups }

// testConfig satisfies accounts.Config.
type testConfig struct {
	signingKey string
	baseURL    string
	scheme     string
}

func (c testConfig) GetSigningKey() string { return c.signingKey }
func (c testConfig) GetBaseURL() string    { return c.baseURL }
func (c testConfig) GetAuthScheme() string { return c.scheme }

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		baseURL:    "http://localhost:3000",
		scheme:     "Bearer",
	}
}

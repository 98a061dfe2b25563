package accounts

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SetUserPasswordSQL replaces the password hash and clears any
// outstanding challenge code in a single statement, so a failure
// mid-operation can never leave a new hash with a stale OTP.
var SetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"otp" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	(
	"usr"."id" = ?
) RETURNING *;`

// Users is the credential store. It exclusively owns principal records:
// identity, password hash, verification/active flags, and the one-time
// challenge code.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	IssueChallenge(ctx context.Context, user *User) (int, error)
	IssueChallengeTx(ctx context.Context, tx bun.IDB, user *User) (int, error)
	ConsumeChallenge(user *User, code int) bool

	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error

	UpdateProfile(ctx context.Context, record *User) (*User, error)
	UpdateProfileTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.SetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, SetUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// IssueChallenge generates a fresh 6-digit challenge code and stores it
// on the user row, overwriting any prior code. A user has at most one
// outstanding challenge.
func (a *users) IssueChallenge(ctx context.Context, user *User) (int, error) {
	return a.IssueChallengeTx(ctx, a.db, user)
}

func (a *users) IssueChallengeTx(ctx context.Context, tx bun.IDB, user *User) (int, error) {
	code, err := randomChallengeCode()
	if err != nil {
		return 0, err
	}

	_, err = tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"otp" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			("usr".id = ?);
	`, code, user.ID).Exec(ctx)
	if err != nil {
		return 0, err
	}

	user.OTP = &code

	return code, nil
}

// ConsumeChallenge reports whether the code matches the outstanding
// challenge. It does NOT clear the code: a matched challenge stays
// valid until the password change clears it.
func (a *users) ConsumeChallenge(user *User, code int) bool {
	if user == nil || user.OTP == nil {
		return false
	}
	return *user.OTP == code
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	lastLogin := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"last_login" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			("usr".id = ?);
	`, lastLogin, user.ID).Exec(ctx)

	if err == nil {
		user.LastLogin = &lastLogin
	}

	return err
}

func (a *users) UpdateProfile(ctx context.Context, record *User) (*User, error) {
	return a.UpdateProfileTx(ctx, a.db, record)
}

// UpdateProfileTx persists a partial profile update: only non-zero
// fields on the record are written.
func (a *users) UpdateProfileTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(record.ID.String()),
		repository.UpdateSkipZeroValues(),
	}

	return a.Repository.UpdateTx(ctx, tx, record, criteria...)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.DeviceType == "" {
		record.DeviceType = DeviceWeb
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// randomChallengeCode returns an integer in [100000, 999999].
func randomChallengeCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}

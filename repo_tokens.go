package accounts

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tokens owns the auth token table. It only ever reads principal
// state; user mutations stay in the Users repository.
type Tokens interface {
	GetByKey(ctx context.Context, key string) (*AuthToken, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*AuthToken, error)
	Create(ctx context.Context, userID uuid.UUID) (*AuthToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*AuthToken, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type tokens struct {
	db *bun.DB
}

var _ Tokens = (*tokens)(nil)

func NewTokensRepository(db *bun.DB) Tokens {
	return &tokens{db: db}
}

func (r *tokens) GetByKey(ctx context.Context, key string) (*AuthToken, error) {
	record := &AuthToken{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *tokens) GetByUser(ctx context.Context, userID uuid.UUID) (*AuthToken, error) {
	record := &AuthToken{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *tokens) Create(ctx context.Context, userID uuid.UUID) (*AuthToken, error) {
	return r.CreateTx(ctx, r.db, userID)
}

func (r *tokens) CreateTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*AuthToken, error) {
	key, err := GenerateTokenKey()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &AuthToken{
		Key:       key,
		UserID:    userID,
		CreatedAt: &now,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

// DeleteByUser removes every token owned by the user. Deleting for a
// user with no token is a no-op.
func (r *tokens) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.DeleteByUserTx(ctx, r.db, userID)
}

func (r *tokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*AuthToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

// GenerateTokenKey mints an opaque 40-character bearer key.
func GenerateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

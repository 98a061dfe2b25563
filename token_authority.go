package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// TokenRollingWindow is the rolling validity window: a token is
// expired once at least this much time has elapsed since the owner's
// last login.
const TokenRollingWindow = 7 * 24 * time.Hour

// TokenAuthority issues, validates, and rotates opaque bearer tokens.
// Per principal the lifecycle is NO_TOKEN -> ACTIVE -> (EXPIRED) ->
// ACTIVE (rotated). The expiry check and the rotation are not atomic
// against concurrent requests for the same principal; two racing
// rotations both delete-then-create and the last write wins.
type TokenAuthority struct {
	tokens Tokens
	logger Logger
	now    func() time.Time
}

// NewTokenAuthority returns a TokenAuthority backed by the given store.
func NewTokenAuthority(tokens Tokens) *TokenAuthority {
	return &TokenAuthority{
		tokens: tokens,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (a *TokenAuthority) WithLogger(l Logger) *TokenAuthority {
	if l != nil {
		a.logger = l
	}
	return a
}

// WithClock overrides the time source.
func (a *TokenAuthority) WithClock(now func() time.Time) *TokenAuthority {
	if now != nil {
		a.now = now
	}
	return a
}

// IsExpired applies the rolling expiry rule. A user with no recorded
// last login never expires; the token itself carries no expiry, so
// validity is entirely a function of now minus last_login.
func (a *TokenAuthority) IsExpired(user *User) bool {
	if user == nil || user.LastLogin == nil {
		return false
	}
	return a.now().Sub(*user.LastLogin) >= TokenRollingWindow
}

// IssueOrGet returns the user's active token, minting one when none
// exists and rotating when the current one is expired. The returned
// bool reports whether a rotation happened.
func (a *TokenAuthority) IssueOrGet(ctx context.Context, user *User) (*AuthToken, bool, error) {
	token, err := a.tokens.GetByUser(ctx, user.ID)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up auth token")
		}

		token, err = a.tokens.Create(ctx, user.ID)
		if err != nil {
			return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint auth token")
		}

		return token, false, nil
	}

	return a.Refresh(ctx, user, token)
}

// Refresh evaluates the given token against the expiry rule and
// rotates it when stale. Callers must treat the returned token as the
// active one; after a rotation the presented key is gone.
func (a *TokenAuthority) Refresh(ctx context.Context, user *User, token *AuthToken) (*AuthToken, bool, error) {
	if !a.IsExpired(user) {
		return token, false, nil
	}

	if err := a.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete expired auth token")
	}

	rotated, err := a.tokens.Create(ctx, user.ID)
	if err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate auth token")
	}

	a.logger.Debug("rotated expired token for user %s", user.ID.String())

	return rotated, true, nil
}

// Revoke deletes every token owned by the user. Revoking a user with
// no token is a no-op.
func (a *TokenAuthority) Revoke(ctx context.Context, user *User) error {
	if err := a.tokens.DeleteByUser(ctx, user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke auth tokens")
	}
	return nil
}

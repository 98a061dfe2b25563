package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Authenticator resolves bearer credentials to a principal. It is the
// single gate every protected operation passes through.
type Authenticator struct {
	users     Users
	authority *TokenAuthority
	logger    Logger
}

func NewAuthenticator(users Users, authority *TokenAuthority) *Authenticator {
	return &Authenticator{
		users:     users,
		authority: authority,
		logger:    defLogger{},
	}
}

func (s *Authenticator) WithLogger(l Logger) *Authenticator {
	if l != nil {
		s.logger = l
	}
	return s
}

// Authenticate resolves a bearer key to its owning principal and the
// active token. The presented token may be rotated away mid-call; the
// returned token is the one the caller must treat as current.
func (s *Authenticator) Authenticate(ctx context.Context, key string) (*User, *AuthToken, error) {
	token, err := s.authority.tokens.GetByKey(ctx, key)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up bearer token")
	}

	user, err := s.users.GetByID(ctx, token.UserID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load token owner")
	}

	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	token, rotated, err := s.authority.Refresh(ctx, user, token)
	if err != nil {
		return nil, nil, err
	}

	if rotated {
		s.logger.Info("bearer token rotated during request for user %s", user.ID.String())
	}

	return user, token, nil
}

// EnsureLoginAllowed is the narrow guard in front of the application
// login path. Staff and superuser accounts, blocked accounts, and
// unverified accounts are each rejected with a distinct reason.
func EnsureLoginAllowed(user *User) error {
	if user == nil {
		return ErrUserNotFound
	}

	if user.IsStaffAccount() {
		return ErrStaffLoginBlocked
	}

	if !user.IsActive {
		return ErrAccountBlocked
	}

	if !user.IsVerified {
		return ErrEmailNotVerified
	}

	return nil
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ResetPasswordMessage struct {
	User        *User
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
	OnResponse  func(resp *ResetPasswordResponse)
}

func (e ResetPasswordMessage) Type() string { return "user.password_reset" }

type ResetPasswordResponse struct {
	Success bool
}

// ResetPasswordHandler is the authenticated password change: prove the
// current password, pick a different one. The existing bearer token
// stays valid across the change.
type ResetPasswordHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewResetPasswordHandler(repo RepositoryManager) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ResetPasswordHandler) WithLogger(l Logger) *ResetPasswordHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.User == nil {
		return ErrUserNotFound
	}

	if err := ComparePasswordAndHash(event.OldPassword, event.User.PasswordHash); err != nil {
		return ErrOldPasswordMismatch
	}

	if event.OldPassword == event.NewPassword {
		return ErrSamePassword
	}

	if err := CheckPasswordStrength(event.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Users().SetPasswordTx(ctx, tx, event.User.ID, hash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ResetPasswordResponse{Success: true})
	}

	return nil
}

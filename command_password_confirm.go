package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ConfirmPasswordMessage struct {
	Email       string `json:"email"`
	OTP         int    `json:"otp"`
	NewPassword string `json:"new_password"`
	OnResponse  func(resp *ConfirmPasswordResponse)
}

func (e ConfirmPasswordMessage) Type() string { return "user.password_confirm" }

type ConfirmPasswordResponse struct {
	Success bool
}

// ConfirmPasswordHandler completes the recovery flow: it matches the
// challenge code and replaces the password. A failed match leaves the
// outstanding code untouched, so the user may retry with the same
// code. The password write clears the code atomically.
type ConfirmPasswordHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewConfirmPasswordHandler(repo RepositoryManager) *ConfirmPasswordHandler {
	return &ConfirmPasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ConfirmPasswordHandler) WithLogger(l Logger) *ConfirmPasswordHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ConfirmPasswordHandler) Execute(ctx context.Context, event ConfirmPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmPasswordHandler) execute(ctx context.Context, event ConfirmPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for password confirmation")
	}

	if !h.repo.Users().ConsumeChallenge(user, event.OTP) {
		return ErrInvalidOTP
	}

	if err := CheckPasswordStrength(event.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return h.repo.Users().SetPasswordTx(ctx, tx, user.ID, hash)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password confirmation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ConfirmPasswordResponse{Success: true})
	}

	return nil
}

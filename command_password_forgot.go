package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ForgotPasswordMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ForgotPasswordResponse)
}

func (e ForgotPasswordMessage) Type() string { return "user.password_forgot" }

type ForgotPasswordResponse struct {
	Success bool
}

// ForgotPasswordHandler issues a one-time challenge code and mails it
// to the registered address. Issuing a new code overwrites any prior
// one. The caller learns nothing about delivery: once the code is
// stored the operation succeeds.
type ForgotPasswordHandler struct {
	repo   RepositoryManager
	mail   *Dispatcher
	logger Logger
}

func NewForgotPasswordHandler(repo RepositoryManager) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ForgotPasswordHandler) WithMailer(d *Dispatcher) *ForgotPasswordHandler {
	h.mail = d
	return h
}

func (h *ForgotPasswordHandler) WithLogger(l Logger) *ForgotPasswordHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ForgotPasswordHandler) Execute(ctx context.Context, event ForgotPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during forgot password",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ForgotPasswordHandler) execute(ctx context.Context, event ForgotPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrEmailNotRegistered
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for password recovery")
	}

	if !user.IsVerified {
		return ErrEmailNotVerified
	}

	code, err := h.repo.Users().IssueChallenge(ctx, user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue challenge code")
	}

	if h.mail != nil {
		h.mail.Dispatch(user.Email, MailMessage{
			Subject:  "Forgot Password mail",
			Template: TemplateForgotPassword,
			Context: map[string]any{
				"code":  code,
				"email": user.Email,
			},
		})
	} else {
		h.logger.Warn("no mailer configured, skipping challenge email for %s", user.Email)
	}

	if event.OnResponse != nil {
		event.OnResponse(&ForgotPasswordResponse{Success: true})
	}

	return nil
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	DeviceType string `json:"device_type"`
	UseHashid  bool
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User    *User
	Success bool
}

// RegisterUserHandler creates a principal, assigns it to the default
// group, and dispatches the verification email. Creation and group
// assignment share one transaction; the email goes out after commit
// and never rolls anything back.
type RegisterUserHandler struct {
	repo   RepositoryManager
	codec  *VerificationCodec
	mail   *Dispatcher
	config Config
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager, codec *VerificationCodec, config Config) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		codec:  codec,
		config: config,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithMailer(d *Dispatcher) *RegisterUserHandler {
	h.mail = d
	return h
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := CheckEmailFormat(event.Email); err != nil {
		return err
	}

	if err := CheckPasswordStrength(event.Password); err != nil {
		return err
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return ErrDuplicateEmail
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing email")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Phone = event.Phone
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.DeviceType = DeviceType(event.DeviceType)
		user.IsActive = true
		user.IsVerified = false
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		group, err := h.repo.Groups().GetOrCreateByNameTx(ctx, tx, DefaultGroupName)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve default group")
		}

		if err := h.repo.Groups().AssignTx(ctx, tx, user, group); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to assign default group")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.sendVerificationMail(user)

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:    user,
			Success: true,
		})
	}

	return nil
}

func (h *RegisterUserHandler) sendVerificationMail(user *User) {
	if h.mail == nil {
		h.logger.Warn("no mailer configured, skipping verification email for %s", user.Email)
		return
	}

	h.mail.Dispatch(user.Email, MailMessage{
		Subject:  "Welcome Email",
		Template: TemplateWelcomeMail,
		Context: map[string]any{
			"email": user.Email,
			"user":  user,
			"url":   h.codec.VerificationURL(h.config.GetBaseURL(), user),
		},
	})
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type LoginMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *LoginResponse)
}

func (e LoginMessage) Type() string { return "user.login" }

type LoginResponse struct {
	User    *User
	Token   *AuthToken
	Rotated bool
	Success bool
}

// LoginHandler authenticates credentials and hands out the bearer
// token. Guard order matters: staff rejection, then blocked, then
// unverified, then the password check. The token authority evaluates
// expiry against the previous last_login before this login stamps a
// new one.
type LoginHandler struct {
	repo      RepositoryManager
	authority *TokenAuthority
	logger    Logger
}

func NewLoginHandler(repo RepositoryManager, authority *TokenAuthority) *LoginHandler {
	return &LoginHandler{
		repo:      repo,
		authority: authority,
		logger:    defLogger{},
	}
}

func (h *LoginHandler) WithLogger(l Logger) *LoginHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidCredentials
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for login")
	}

	if err := EnsureLoginAllowed(user); err != nil {
		return err
	}

	if err := ComparePasswordAndHash(event.Password, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	token, rotated, err := h.authority.IssueOrGet(ctx, user)
	if err != nil {
		return err
	}

	if err := h.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record login time")
	}

	if event.OnResponse != nil {
		event.OnResponse(&LoginResponse{
			User:    user,
			Token:   token,
			Rotated: rotated,
			Success: true,
		})
	}

	return nil
}

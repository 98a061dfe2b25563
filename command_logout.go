package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type LogoutMessage struct {
	User       *User
	OnResponse func(resp *LogoutResponse)
}

func (e LogoutMessage) Type() string { return "user.logout" }

type LogoutResponse struct {
	Success bool
}

// LogoutHandler revokes every token the principal owns. Logging out
// twice is harmless.
type LogoutHandler struct {
	authority *TokenAuthority
	logger    Logger
}

func NewLogoutHandler(authority *TokenAuthority) *LogoutHandler {
	return &LogoutHandler{
		authority: authority,
		logger:    defLogger{},
	}
}

func (h *LogoutHandler) WithLogger(l Logger) *LogoutHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *LogoutHandler) Execute(ctx context.Context, event LogoutMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during logout",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LogoutHandler) execute(ctx context.Context, event LogoutMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.User == nil {
		return ErrUserNotFound
	}

	if err := h.authority.Revoke(ctx, event.User); err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(&LogoutResponse{Success: true})
	}

	return nil
}

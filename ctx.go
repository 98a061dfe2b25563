package accounts

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var userCtxKey = &contextKey{"user"}
var tokenCtxKey = &contextKey{"token"}

type contextKey struct {
	name string
}

// Locals keys populated by the authentication middleware.
const (
	LocalUser  = "accounts_user"
	LocalToken = "accounts_token"
)

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithTokenContext sets the active AuthToken in the given context
func WithTokenContext(r context.Context, token *AuthToken) context.Context {
	return context.WithValue(r, tokenCtxKey, token)
}

// TokenFromContext finds the active token from the context.
func TokenFromContext(ctx context.Context) (*AuthToken, bool) {
	raw, ok := ctx.Value(tokenCtxKey).(*AuthToken)
	return raw, ok
}

// UserFromFiber extracts the authenticated user set by the middleware.
func UserFromFiber(c *fiber.Ctx) (*User, bool) {
	raw := c.Locals(LocalUser)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

// TokenFromFiber extracts the active token set by the middleware. After
// a rotation this is the replacement token, not the presented one.
func TokenFromFiber(c *fiber.Ctx) (*AuthToken, bool) {
	raw := c.Locals(LocalToken)
	if raw == nil {
		return nil, false
	}
	token, ok := raw.(*AuthToken)
	return token, ok
}

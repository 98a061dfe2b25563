package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderRotatedToken carries the replacement key when the presented
// token was rotated mid-request. Clients must adopt it: the presented
// key no longer exists.
const HeaderRotatedToken = "X-Auth-Token"

// DefaultAuthScheme is the expected Authorization scheme.
const DefaultAuthScheme = "Bearer"

// RouteGuard is the authentication and authorization middleware for
// protected routes. It resolves the bearer key to a principal, applies
// the capability policy for the request verb, and exposes the
// principal through Locals for the handler.
type RouteGuard struct {
	auther *Authenticator
	policy *Policy
	scheme string
	logger Logger
}

func NewRouteGuard(auther *Authenticator, policy *Policy) *RouteGuard {
	return &RouteGuard{
		auther: auther,
		policy: policy,
		scheme: DefaultAuthScheme,
		logger: defLogger{},
	}
}

func (g *RouteGuard) WithScheme(scheme string) *RouteGuard {
	if scheme != "" {
		g.scheme = scheme
	}
	return g
}

func (g *RouteGuard) WithLogger(l Logger) *RouteGuard {
	if l != nil {
		g.logger = l
	}
	return g
}

// Protect guards a route subtree with authentication plus a capability
// check against the given resource.
func (g *RouteGuard) Protect(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := g.bearerKey(c)
		if err != nil {
			return FailureFromError(c, err)
		}

		user, token, err := g.auther.Authenticate(c.UserContext(), key)
		if err != nil {
			return FailureFromError(c, err)
		}

		if err := g.policy.Authorize(user, c.Method(), resource); err != nil {
			return FailureFromError(c, err)
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalToken, token)

		if token.Key != key {
			c.Set(HeaderRotatedToken, token.Key)
		}

		return c.Next()
	}
}

func (g *RouteGuard) bearerKey(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrMissingAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], g.scheme) || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return strings.TrimSpace(parts[1]), nil
}

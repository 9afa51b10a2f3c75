package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

const claimsKey = "auth_claims"

// TokenExtractor pulls the raw token out of a request.
type TokenExtractor func(c *fiber.Ctx) (string, error)

// FromAuthHeader reads an "Authorization: Bearer <token>" header.
func FromAuthHeader() TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return "", errorutil.ErrTokenNotExist
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errorutil.ErrTokenNotExist
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", errorutil.ErrTokenNotExist
		}
		return token, nil
	}
}

// FromCookie reads the token from the named cookie.
func FromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := strings.TrimSpace(c.Cookies(name))
		if token == "" {
			return "", errorutil.ErrTokenNotExist
		}
		return token, nil
	}
}

// AuthMiddleware runs the gate for protected routes. The extraction strategy
// is chosen per route group.
type AuthMiddleware struct {
	gate    *Gate
	extract TokenExtractor
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(gate *Gate, extract TokenExtractor) *AuthMiddleware {
	return &AuthMiddleware{gate: gate, extract: extract}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := m.extract(c)
	if err != nil {
		return err
	}

	claims, err := m.gate.Authorize(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// Optional attaches claims when a token is presented and passes anonymous
// requests through. A presented but rejected token still fails.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	token, err := m.extract(c)
	if errors.Is(err, errorutil.ErrTokenNotExist) {
		return c.Next()
	}
	if err != nil {
		return err
	}

	claims, err := m.gate.Authorize(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

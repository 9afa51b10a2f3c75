package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/session-gateway/internal/api/dto"
	"github.com/spec-kit/session-gateway/internal/auth"
	"github.com/spec-kit/session-gateway/internal/service"
	apperrors "github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login, logout, renew and whoami endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Login handles POST /api/v1/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	_, token, exp, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		// Unknown usernames look like bad passwords to clients.
		if errors.Is(err, apperrors.ErrUserNotExist) {
			return apperrors.ErrAuthorizeFailed
		}
		return err
	}

	h.setCookie(c, token, exp)
	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Logout handles POST /api/v1/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	subjectID, err := subjectFromContext(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), subjectID); err != nil {
		return err
	}

	h.clearCookie(c)
	return c.SendStatus(http.StatusNoContent)
}

// Renew handles POST /api/v1/renew.
func (h *AuthHandler) Renew(c *fiber.Ctx) error {
	subjectID, err := subjectFromContext(c)
	if err != nil {
		return err
	}
	exp, err := h.auth.Renew(c.UserContext(), subjectID)
	if err != nil {
		return err
	}

	if token := c.Cookies(h.cookie.Name); token != "" {
		h.setCookie(c, token, exp)
	}
	return c.JSON(fiber.Map{
		"data": dto.RenewResponse{ExpiresAt: exp},
	})
}

// Me handles GET /api/v1/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.ErrTokenNotExist
	}
	resp := dto.ClaimsResponse{Subject: claims.Subject, Role: int16(claims.Role)}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		resp.ExpiresAt = &exp
	}
	return c.JSON(fiber.Map{"data": resp})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string, exp time.Time) {
	if h.cookie.Name == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx) {
	if h.cookie.Name == "" {
		return
	}
	c.ClearCookie(h.cookie.Name)
}

func subjectFromContext(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return uuid.Nil, apperrors.ErrTokenNotExist
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.ErrTokenIsExpired, err)
	}
	return subjectID, nil
}

package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"github.com/spec-kit/session-gateway/internal/auth"
	apperrors "github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// Headers carrying the authenticated identity to the upstream service.
const (
	HeaderSubjectID   = "X-Subject-Id"
	HeaderSubjectRole = "X-Subject-Role"
)

// ProxyHandler forwards authenticated requests to a downstream service.
type ProxyHandler struct {
	upstream string
	timeout  time.Duration
}

// NewProxyHandler constructs handler. upstream is a base URL such as http://127.0.0.1:3031.
func NewProxyHandler(upstream string, timeout time.Duration) *ProxyHandler {
	return &ProxyHandler{upstream: strings.TrimRight(upstream, "/"), timeout: timeout}
}

// Forward relays the request unchanged apart from the identity headers.
func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.ErrTokenNotExist
	}

	c.Request().Header.Set(HeaderSubjectID, claims.Subject)
	c.Request().Header.Set(HeaderSubjectRole, strconv.Itoa(int(claims.Role)))

	target := h.upstream + c.OriginalURL()
	var err error
	if h.timeout > 0 {
		err = proxy.DoTimeout(c, target, h.timeout)
	} else {
		err = proxy.Do(c, target)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "upstream unavailable")
	}

	c.Response().Header.Del(fiber.HeaderServer)
	return nil
}

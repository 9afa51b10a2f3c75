package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/session-gateway/internal/api/dto"
	"github.com/spec-kit/session-gateway/internal/auth"
	"github.com/spec-kit/session-gateway/internal/domain"
	"github.com/spec-kit/session-gateway/internal/service"
	apperrors "github.com/spec-kit/session-gateway/pkg/util/errorutil"
)

// UsersHandler exposes credential record endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /api/v1/users. Anyone may register a plain user;
// assigning a higher role requires an admin caller.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	role := domain.Role(req.Role)
	if role != domain.RoleUser {
		claims, ok := auth.ClaimsFromContext(c)
		if !ok || !claims.Role.AtLeast(domain.RoleAdmin) {
			return apperrors.NewForbidden("only admins may assign roles")
		}
	}

	user, err := h.users.CreateUser(c.UserContext(), req.Username, req.Password, role)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewUserResponse(user),
	})
}

// Get handles GET /api/v1/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /api/v1/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := domain.UserFilter{
		Keyword: c.Query("keyword"),
		Offset:  c.QueryInt("offset", 0),
		Limit:   c.QueryInt("limit", 0),
	}

	users, err := h.users.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewUserResponses(users),
		"meta": fiber.Map{"offset": filter.Offset, "count": len(users)},
	})
}

package handler

import (
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UserHandler handles household member requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the create user request body
type CreateUserRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// GetUsers handles GET /api/v1/users
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Failed to get users")
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.userService.Create(c.Request().Context(), service.CreateUserInput{
		ID:          req.ID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to create user")
	}

	log.Info().Str("user_id", user.ID).Msg("User created")
	return c.JSON(http.StatusCreated, user)
}

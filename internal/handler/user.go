package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/overflow/internal/service"
)

// UserHandler handles public user endpoints.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile handles GET /users/:id.
func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.users.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, profile)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roknskapar/pdf-processor/internal/core/ports"
)

// UserHandler handles the admin-only user directory endpoints.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type updateUserRequest struct {
	Email     *string  `json:"email" validate:"omitempty,email"`
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	IsActive  *bool    `json:"isActive"`
	Roles     []string `json:"roles"`
}

// List handles GET /api/users.
//
// @Summary      List all user accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user account by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/users/:id. Absent fields are left unchanged; a
// non-null roles list replaces the account's role set.
//
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.userService.Update(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		Roles:     req.Roles,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete a user account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// Roles handles GET /api/users/roles.
//
// @Summary      List the assignable roles
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /api/users/roles [get]
func (h *UserHandler) Roles(c echo.Context) error {
	roles, err := h.userService.Roles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

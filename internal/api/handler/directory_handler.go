package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// DirectoryManager is the slice of the directory service the gateway needs.
type DirectoryManager interface {
	Reload(ctx context.Context) ([]domain.DirectoryUser, error)
	Add(ctx context.Context, in domain.NewUser) error
	Update(ctx context.Context, username string, patch domain.UserPatch) error
	Remove(ctx context.Context, username string) error
	Page(query string, page int) domain.Page[domain.DirectoryUser]
}

type DirectoryHandler struct {
	directory DirectoryManager
}

func NewDirectoryHandler(directory DirectoryManager) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// List returns a page of users matching q. refresh=true refetches first.
//
// @Summary      User directory
// @Tags         admin
// @Produce      json
// @Param        q        query     string  false  "Name or username substring"
// @Param        page     query     int     false  "Page number (6 per page)"
// @Param        refresh  query     bool    false  "Refetch from the backend"
// @Success      200      {object}  domain.Page[domain.DirectoryUser]
// @Failure      403      {object}  map[string]string
// @Router       /admin/users [get]
func (h *DirectoryHandler) List(c echo.Context) error {
	if c.QueryParam("refresh") == "true" {
		if _, err := h.directory.Reload(c.Request().Context()); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, h.directory.Page(c.QueryParam("q"), queryInt(c, "page", 1)))
}

// Create adds a user.
//
// @Summary      Add user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      domain.NewUser  true  "User details"
// @Success      201   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /admin/users [post]
func (h *DirectoryHandler) Create(c echo.Context) error {
	var req domain.NewUser
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.directory.Add(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "User added"})
}

// Update applies the non-empty fields of the patch.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        username  path      string            true  "Username"
// @Param        body      body      domain.UserPatch  true  "Fields to change"
// @Success      200       {object}  map[string]string
// @Failure      422       {object}  map[string]string
// @Failure      502       {object}  map[string]string
// @Router       /admin/users/{username} [put]
func (h *DirectoryHandler) Update(c echo.Context) error {
	var req domain.UserPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.directory.Update(c.Request().Context(), c.Param("username"), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User updated"})
}

// Delete removes a user.
//
// @Summary      Delete user
// @Tags         admin
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      502  {object}  map[string]string
// @Router       /admin/users/{username} [delete]
func (h *DirectoryHandler) Delete(c echo.Context) error {
	if err := h.directory.Remove(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

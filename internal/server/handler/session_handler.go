package handler

import (
	"net/http"

	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

// /users/current
type SessionHandler struct {
	svc *service.AuthService
}

// DI
func NewSessionHandler(svc *service.AuthService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) RegisterRoutes(g *echo.Group, authed ...echo.MiddlewareFunc) {
	u := g.Group("/users/current", authed...)
	u.GET("", h.current)
	u.PUT("", h.update)
}

func (h *SessionHandler) current(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *SessionHandler) update(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req service.ProfileInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.svc.UpdateCurrent(c.Request().Context(), user.ID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

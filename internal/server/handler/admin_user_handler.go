package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	svc *service.UserService
}

func NewAdminUserHandler(svc *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{svc: svc}
}

// /admin 配下は全部「JWT必須 + token_version一致 + admin限定」
func (h *AdminUserHandler) RegisterRoutes(g *echo.Group, admin ...echo.MiddlewareFunc) {
	a := g.Group("/admin", admin...)
	a.GET("/users", h.list)
	a.DELETE("/users/:uid", h.delete)
	a.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminUserHandler) delete(c echo.Context) error {
	admin, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Request().Context(), admin.ID, c.Param("uid")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// ?limit=（未指定なら50）
func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	logs, err := h.svc.AuditLogs(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

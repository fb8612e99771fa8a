package handler

import (
	"net/http"

	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

// /products（管理者の商品管理）
type AdminProductHandler struct {
	svc *service.ProductService
}

// DI
func NewAdminProductHandler(svc *service.ProductService) *AdminProductHandler {
	return &AdminProductHandler{svc: svc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(g *echo.Group, admin ...echo.MiddlewareFunc) {
	p := g.Group("/products", admin...)
	p.GET("", h.list)
	p.POST("", h.create)
	p.PUT("/:pid", h.update)
	p.DELETE("/:pid", h.delete)
}

func (h *AdminProductHandler) list(c echo.Context) error {
	out, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	admin, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	p, err := h.svc.Create(c.Request().Context(), admin.ID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	admin, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	p, err := h.svc.Update(c.Request().Context(), admin.ID, c.Param("pid"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	admin, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Request().Context(), admin.ID, c.Param("pid")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

// ログインユーザー向けカタログ
type ProductHandler struct {
	svc *service.ProductService
}

// DI
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) RegisterRoutes(g *echo.Group, authed ...echo.MiddlewareFunc) {
	p := g.Group("/users/products", authed...)
	p.GET("", h.list)
	p.GET("/:pid", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// limit（未指定なら既定値）
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.svc.ListActive(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.svc.GetActive(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

package handler

import (
	"net/http"

	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

// /users/carts/:cid のHTTP
type CartHandler struct {
	svc *service.CartService
}

// DI
func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group, authed ...echo.MiddlewareFunc) {
	cg := g.Group("/users/carts/:cid", authed...)
	cg.GET("", h.get)
	cg.DELETE("", h.clear)
	cg.POST("/products/:pid", h.add)
	cg.PUT("/products/:pid", h.setQuantity)
	cg.DELETE("/products/:pid", h.remove)
	cg.POST("/purchase", h.purchase)

	g.GET("/users/tickets", h.tickets, authed...)
}

// 自分の購入履歴
func (h *CartHandler) tickets(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	tickets, err := h.svc.Tickets(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

func (h *CartHandler) get(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	cart, err := h.svc.Get(c.Request().Context(), user, c.Param("cid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) add(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	//bodyが無ければ1個
	req := quantityRequest{Quantity: 1}
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.svc.AddProduct(c.Request().Context(), user, c.Param("cid"), c.Param("pid"), req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "added"})
}

func (h *CartHandler) setQuantity(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.svc.SetQuantity(c.Request().Context(), user, c.Param("cid"), c.Param("pid"), req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *CartHandler) remove(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.svc.RemoveProduct(c.Request().Context(), user, c.Param("cid"), c.Param("pid")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "removed"})
}

func (h *CartHandler) clear(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.svc.Clear(c.Request().Context(), user, c.Param("cid")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cleared"})
}

func (h *CartHandler) purchase(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	res, err := h.svc.Purchase(c.Request().Context(), user, c.Param("cid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

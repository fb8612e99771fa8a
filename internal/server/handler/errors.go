package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/server/middleware"
	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := service.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	c.Logger().Errorf("unhandled error: %v", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// TokenVersionGuardが入れたuser
func currentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(middleware.CtxUserKey).(model.User)
	if !ok || u.ID == "" {
		return model.User{}, false
	}
	return u, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

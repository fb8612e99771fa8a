package handler

import (
	"net/http"
	"time"

	"storefront/internal/server/middleware"
	"storefront/internal/server/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc          *service.AuthService
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(svc *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookieSecure: cookieSecure}
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/* を登録。logoutだけセッション必須
func (h *AuthHandler) RegisterRoutes(g *echo.Group, authed ...echo.MiddlewareFunc) {
	a := g.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/logout", h.logout, authed...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	res, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	h.setSessionCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, res.User)
}

func (h *AuthHandler) logout(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.svc.Logout(c.Request().Context(), user.ID); err != nil {
		return writeError(c, err)
	}

	//cookieを消す
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// session cookieはHttpOnly
func (h *AuthHandler) setSessionCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

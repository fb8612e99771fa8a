package server

import (
	"storefront/internal/config"
	"storefront/internal/server/handler"
	"storefront/internal/server/middleware"
	"storefront/internal/server/store"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// /api 配下に全ルートを登録
func RegisterRoutes(e *echo.Echo, cfg config.ServerConfig, users store.UserRepository, s *Server) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	//IP単位のレート制限
	if cfg.RateLimit > 0 {
		e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	api := e.Group("/api")

	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(users),
	}
	admin := append(append([]echo.MiddlewareFunc{}, authed...), middleware.AdminRoleGuard())

	handler.NewAuthHandler(s.Auth, cfg.CookieSecure).RegisterRoutes(api, authed...)
	handler.NewSessionHandler(s.Auth).RegisterRoutes(api, authed...)
	handler.NewProductHandler(s.Products).RegisterRoutes(api, authed...)
	handler.NewCartHandler(s.Carts).RegisterRoutes(api, authed...)
	handler.NewAdminProductHandler(s.Products).RegisterRoutes(api, admin...)
	handler.NewAdminUserHandler(s.Users).RegisterRoutes(api, admin...)
}

// Package server はstoreapi（storefrontが使うREST API）の組み立て
package server

import (
	"context"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/server/service"
	"storefront/internal/server/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type Server struct {
	e        *echo.Echo
	cfg      config.ServerConfig
	Auth     *service.AuthService
	Products *service.ProductService
	Carts    *service.CartService
	Users    *service.UserService
}

// Newはserviceを組み立ててルートを登録する
func New(cfg config.ServerConfig, st store.Store, mailer service.PurchaseMailer, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	if logger != nil {
		e.Logger = logger
	}

	ids := service.UUIDGenerator{}
	clock := service.SystemClock{}

	s := &Server{
		e:   e,
		cfg: cfg,
		Auth: service.NewAuthService(
			st,
			service.NewBcryptPasswordHasher(cfg.BcryptCost),
			service.NewBcryptPasswordVerifier(),
			service.NewJWTIssuer(cfg.JWTSecret, cfg.SessionTTL),
			ids,
			clock,
			service.AuthOptions{AllowAdminSignup: cfg.AllowAdminSignup, Logger: logger},
		),
		Products: service.NewProductService(st, ids, clock, logger),
		Carts:    service.NewCartService(st, ids, clock, mailer, logger),
		Users:    service.NewUserService(st, clock, logger),
	}

	RegisterRoutes(e, cfg, st.Users(), s)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start() error {
	return s.e.Start(s.cfg.Addr())
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

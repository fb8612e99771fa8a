package app

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/infra/repository"
	"storefront/internal/server"
	"storefront/internal/server/mail"
	"storefront/internal/server/service"
	"storefront/internal/server/store"

	"github.com/labstack/gommon/log"
)

// OpenStoreはSTORE_DRIVERに応じてstoreを作る。postgresならテーブルも作る
func OpenStore(ctx context.Context, cfg config.ServerConfig) (store.Store, func() error, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	gormDB, err := db.Connect(cfg.DatabaseURL, cfg.GoEnv == "dev")
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}

	st := repository.NewGormStore(gormDB)
	if err := st.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, sqlDB.Close, nil
}

// トークンが無ければログに出すだけ
func NewMailer(cfg config.ServerConfig, logger *log.Logger) service.PurchaseMailer {
	if cfg.PostmarkToken == "" {
		return mail.NewLogMailer(logger)
	}
	return mail.NewPostmarkMailer(cfg.PostmarkToken, cfg.EmailSender)
}

// NewServerはstore・mailer・seedまで済ませたstoreapiを返す
func NewServer(ctx context.Context, cfg config.ServerConfig, st store.Store, logger *log.Logger) (*server.Server, error) {
	if logger == nil {
		logger = log.New("storeapi")
		logger.SetLevel(log.OFF)
	}
	srv := server.New(cfg, st, NewMailer(cfg, logger), logger)

	if cfg.SeedFile == "" {
		return srv, nil
	}
	seed, err := store.ReadSeedFile(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	res, err := service.ApplySeed(ctx, seed, srv.Auth, srv.Products)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	logger.Infof("seed: users=%d products=%d skipped=%d", res.Users, res.Products, res.Skipped)
	return srv, nil
}

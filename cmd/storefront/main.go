package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func main() {
	//.envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.New("storefront")
	logger.SetOutput(os.Stderr)
	logger.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	client, err := app.NewClient(cfg, app.ClientOptions{
		Out:     os.Stdout,
		Colored: os.Getenv("NO_COLOR") == "",
		Logger:  logger,
	})
	if err != nil {
		logger.Fatalf("init: %v", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Shell.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("shell: %v", err)
	}
}

package config

import (
	"fmt"
	"os"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// ServerConfigはstoreapi（参照バックエンド）の設定
type ServerConfig struct {
	Port        string // サーバーポート（8080）
	StoreDriver string // postgres / memory
	DatabaseURL string // 空ならPOSTGRES_*から組み立てる

	JWTSecret    string        // JWT署名シークレット
	SessionTTL   time.Duration // セッションcookieの有効期限
	BcryptCost   int           // パスワードハッシュのコスト（12）
	CookieSecure bool

	GoEnv            string // dev/prod
	AllowAdminSignup bool   // 登録時のrole=adminを許可するか
	RateLimit        int    // 1秒あたりのリクエスト数（IP単位）

	PostmarkToken string // 購入確認メール（空ならログのみ）
	EmailSender   string

	SeedFile string // 初期商品（YAML）
}

// LoadServerは環境変数を読む。PORTとJWT_SECRETは必須
func LoadServer() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:             os.Getenv("PORT"),
		StoreDriver:      getenv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CookieSecure:     envBool("COOKIE_SECURE", false),
		GoEnv:            getenv("GO_ENV", "dev"),
		AllowAdminSignup: envBool("ALLOW_ADMIN_SIGNUP", false),
		PostmarkToken:    os.Getenv("POSTMARK_SERVER_TOKEN"),
		EmailSender:      getenv("EMAIL_SENDER", "no-reply@storefront.local"),
		SeedFile:         os.Getenv("SEED_FILE"),
	}

	var err error
	if cfg.SessionTTL, err = durationOr("SESSION_TTL", 24*time.Hour); err != nil {
		return ServerConfig{}, err
	}
	if cfg.RateLimit, err = atoiOr("RATE_LIMIT", 20); err != nil {
		return ServerConfig{}, err
	}
	if cfg.BcryptCost, err = atoiOr("BCRYPT_COST", 12); err != nil {
		return ServerConfig{}, err
	}

	//必須チェック
	if cfg.Port == "" {
		return ServerConfig{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return ServerConfig{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return ServerConfig{}, fmt.Errorf("STORE_DRIVER must be postgres or memory")
	}
	if cfg.SessionTTL <= 0 {
		return ServerConfig{}, fmt.Errorf("SESSION_TTL must be > 0")
	}

	return cfg, nil
}

// ":8080" 形式のアドレス
func (c ServerConfig) Addr() string {
	if c.Port != "" && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

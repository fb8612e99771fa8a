package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Configはstorefront（クライアント）の設定
type Config struct {
	APIBaseURL      string        // APIのベース（http://localhost:8080/api）
	RequestTimeout  time.Duration // 通常リクエストのタイムアウト（10s）
	PurchaseTimeout time.Duration // 購入リクエストのタイムアウト（60s）

	CatalogLimit   int           // 一覧取得の件数（?limit=）
	PageSize       int           // 1ページの件数
	SearchDebounce time.Duration // 検索入力のdebounce
	Locale         string        // 名前順ソートのロケール

	ShippingFee           int64 // 送料
	FreeShippingThreshold int64 // 小計がこれを超えたら送料無料

	ThemeFile string // テーマ設定の保存先
	LogLevel  string // debug/info/warn/error/off
}

// Loadは環境変数から読み込む。未設定ならデフォルト
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL: strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8080/api"), "/"),
		Locale:     getenv("LOCALE", "es"),
		ThemeFile:  getenv("THEME_FILE", defaultThemeFile()),
		LogLevel:   strings.ToLower(getenv("LOG_LEVEL", "warn")),
	}

	var err error
	if cfg.RequestTimeout, err = durationOr("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PurchaseTimeout, err = durationOr("PURCHASE_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SearchDebounce, err = durationOr("SEARCH_DEBOUNCE", 300*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.CatalogLimit, err = atoiOr("CATALOG_LIMIT", 100); err != nil {
		return Config{}, err
	}
	if cfg.PageSize, err = atoiOr("PAGE_SIZE", 12); err != nil {
		return Config{}, err
	}

	fee, err := atoiOr("SHIPPING_FEE", 1500)
	if err != nil {
		return Config{}, err
	}
	threshold, err := atoiOr("FREE_SHIPPING_THRESHOLD", 50000)
	if err != nil {
		return Config{}, err
	}
	cfg.ShippingFee = int64(fee)
	cfg.FreeShippingThreshold = int64(threshold)

	//範囲チェック
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return Config{}, fmt.Errorf("API_BASE_URL must be http(s) url")
	}
	if cfg.RequestTimeout <= 0 || cfg.PurchaseTimeout <= 0 {
		return Config{}, fmt.Errorf("timeouts must be > 0")
	}
	if cfg.SearchDebounce < 0 {
		return Config{}, fmt.Errorf("SEARCH_DEBOUNCE must be >= 0")
	}
	if cfg.CatalogLimit < 1 || cfg.CatalogLimit > 1000 {
		return Config{}, fmt.Errorf("CATALOG_LIMIT must be 1..1000")
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be >= 1")
	}
	if cfg.ShippingFee < 0 || cfg.FreeShippingThreshold < 0 {
		return Config{}, fmt.Errorf("shipping values must be >= 0")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func defaultThemeFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront.yaml"
	}
	return filepath.Join(home, ".storefront.yaml")
}

// Package app は設定から各部品を組み立てる
package app

import (
	"io"

	"storefront/internal/api"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/infra/rest"
	"storefront/internal/notify"
	"storefront/internal/session"
	"storefront/internal/shell"
	"storefront/internal/theme"
	"storefront/internal/usecase"
	"storefront/internal/view"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Clientは端末ストアフロントの部品一式
type Client struct {
	API      *api.Client
	Store    *session.Store
	Browse   *usecase.BrowseUsecase
	Cart     *usecase.CartUsecase
	Auth     *usecase.AuthUsecase
	Profile  *usecase.ProfileUsecase
	Products *usecase.AdminProductUsecase
	Users    *usecase.AdminUserUsecase
	Theme    *theme.Store
	Shell    *shell.Shell
}

type ClientOptions struct {
	Out      io.Writer
	Colored  bool
	Logger   *log.Logger
	Notifier notify.Notifier
}

// DI
func NewClient(cfg config.Config, opts ClientOptions) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New("storefront")
		logger.SetLevel(log.OFF)
	}

	apiClient, err := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.RequestTimeout), api.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	//Repository（REST実装）生成
	sessions := rest.NewSessionRestRepository(apiClient)
	products := rest.NewProductRestRepository(apiClient)
	carts := rest.NewCartRestRepository(apiClient)
	auth := rest.NewAuthRestRepository(apiClient)
	users := rest.NewUserRestRepository(apiClient)

	store := session.New(sessions, products, carts, session.Options{CatalogLimit: cfg.CatalogLimit, Logger: logger})

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewWriter(opts.Out, opts.Colored)
	}

	themeStore, err := theme.Open(cfg.ThemeFile)
	if err != nil {
		logger.Warnf("theme file %s: %v", cfg.ThemeFile, err)
		themeStore, _ = theme.Open("")
	}

	pipeline := catalog.NewPipeline(
		catalog.WithPageSize(cfg.PageSize),
		catalog.WithLocale(language.Make(cfg.Locale)),
	)

	//Usecase生成
	c := &Client{
		API:    apiClient,
		Store:  store,
		Browse: usecase.NewBrowseUsecase(store, products, pipeline, cfg.SearchDebounce),
		Cart: usecase.NewCartUsecase(store, carts, notifier, usecase.CartOptions{
			Pricing: usecase.Pricing{
				ShippingFee:           decimal.NewFromInt(cfg.ShippingFee),
				FreeShippingThreshold: decimal.NewFromInt(cfg.FreeShippingThreshold),
			},
			PurchaseTimeout: cfg.PurchaseTimeout,
			Logger:          logger,
		}),
		Auth:     usecase.NewAuthUsecase(auth, store, notifier, logger),
		Profile:  usecase.NewProfileUsecase(sessions, store, notifier, logger),
		Products: usecase.NewAdminProductUsecase(products, store, notifier, logger),
		Users:    usecase.NewAdminUserUsecase(users, store, notifier, logger),
		Theme:    themeStore,
	}

	c.Shell = shell.New(shell.Deps{
		Store:         store,
		Browse:        c.Browse,
		Cart:          c.Cart,
		Auth:          c.Auth,
		Profile:       c.Profile,
		AdminProducts: c.Products,
		AdminUsers:    c.Users,
		Theme:         themeStore,
		Renderer:      view.NewRenderer(opts.Out, opts.Colored),
		Notifier:      notifier,
		Logger:        logger,
	}, opts.Out)

	return c, nil
}

func (c *Client) Close() {
	c.Browse.Close()
}

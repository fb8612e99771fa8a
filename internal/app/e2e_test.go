package app_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"storefront/internal/api"
	"storefront/internal/app"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/notify"
	repo "storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/server"
	"storefront/internal/server/service"
	"storefront/internal/server/store"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 描画はdebounceのgoroutineからも来る
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type env struct {
	srv *server.Server
	ts  *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.ServerConfig{
		Port:             "0",
		StoreDriver:      config.StoreDriverMemory,
		JWTSecret:        "e2e-secret",
		SessionTTL:       time.Hour,
		BcryptCost:       4,
		AllowAdminSignup: true,
	}
	srv, err := app.NewServer(context.Background(), cfg, store.NewMemoryStore(), nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &env{srv: srv, ts: ts}
}

func (e *env) client(t *testing.T) (*app.Client, *notify.Recorder, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	rec := &notify.Recorder{}
	c, err := app.NewClient(config.Config{
		APIBaseURL:            e.ts.URL + "/api",
		RequestTimeout:        5 * time.Second,
		PurchaseTimeout:       10 * time.Second,
		CatalogLimit:          100,
		PageSize:              12,
		SearchDebounce:        10 * time.Millisecond,
		Locale:                "es",
		ThemeFile:             filepath.Join(t.TempDir(), "theme.yaml"),
		ShippingFee:           1500,
		FreeShippingThreshold: 50000,
	}, app.ClientOptions{Out: out, Notifier: rec})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, rec, out
}

func (e *env) seedProducts(t *testing.T, n int) []model.Product {
	t.Helper()
	var out []model.Product
	for i := 1; i <= n; i++ {
		category := "bazar"
		if i%2 == 0 {
			category = "almacen"
		}
		p, err := e.srv.Products.Create(context.Background(), service.SeedActor, service.ProductInput{
			Title:    fmt.Sprintf("Item %02d", i),
			Code:     fmt.Sprintf("C%02d", i),
			Price:    float64(100 * i),
			Stock:    i,
			Category: category,
			Status:   true,
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func signup(t *testing.T, c *app.Client, email string, role model.Role) model.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.Auth.Register(ctx, repo.RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: email, Age: 30, Password: "password1", Role: role,
	}))
	u, err := c.Auth.Login(ctx, email, "password1")
	require.NoError(t, err)
	return u
}

func TestE2E_AnonymousRestoreIsNotAnError(t *testing.T) {
	e := newEnv(t)
	c, _, _ := e.client(t)

	require.NoError(t, c.Auth.Restore(context.Background()))
	_, ok := c.Store.User()
	assert.False(t, ok)
}

func TestE2E_LoginLoadsSessionAndCatalog(t *testing.T) {
	e := newEnv(t)
	e.seedProducts(t, 14)
	c, _, _ := e.client(t)
	ctx := context.Background()

	u := signup(t, c, "ana@example.com", "")
	assert.Equal(t, "AD", u.Initials())
	assert.Equal(t, 0, c.Store.CartCount())

	view := c.Browse.View(ctx)
	require.NoError(t, view.Err)
	assert.Equal(t, 14, view.Page.Total)
	assert.Equal(t, 2, view.Page.TotalPages)
	assert.Equal(t, []string{"almacen", "bazar"}, view.Categories)

	c.Browse.SetPage(2)
	assert.Equal(t, 2, c.Browse.View(ctx).Page.Page)

	//カテゴリを変えると1ページ目に戻る
	c.Browse.SetCategory("almacen")
	view = c.Browse.View(ctx)
	assert.Equal(t, 1, view.Page.Page)
	assert.Equal(t, 7, view.Page.Total)

	c.Browse.SetSort(catalog.SortPriceDesc)
	view = c.Browse.View(ctx)
	assert.Equal(t, "Item 14", view.Page.Items[0].Title)
}

func TestE2E_CartRoundTrip(t *testing.T) {
	e := newEnv(t)
	products := e.seedProducts(t, 5)
	c, rec, _ := e.client(t)
	ctx := context.Background()
	signup(t, c, "ana@example.com", "")

	p := products[4] // stock 5
	require.NoError(t, c.Cart.Add(ctx, p, 3))
	assert.Equal(t, 3, c.Store.CartCount())

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Cart.Decrement(ctx, p.ID))
	}
	assert.True(t, c.Store.Cart().IsEmpty())

	//在庫を超えた分は追加されない
	require.NoError(t, c.Cart.Add(ctx, p, 9))
	assert.Equal(t, 5, c.Store.CartCount())

	err := c.Cart.Add(ctx, p, 1)
	assert.ErrorIs(t, err, usecase.ErrStockExceeded)

	sum := c.Cart.Summary()
	assert.Equal(t, "2500", sum.Subtotal.String())
	assert.Equal(t, "1500", sum.Shipping.String())
	assert.Equal(t, "4000", sum.Total.String())

	res, err := c.Cart.Purchase(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, 2500.0, res.Ticket.Amount)
	assert.True(t, c.Store.Cart().IsEmpty())

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelSuccess, last.Level)

	//在庫0になった商品は買えない
	stocked, err := c.Browse.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stocked.Stock)
	assert.ErrorIs(t, c.Cart.Add(ctx, stocked, 1), usecase.ErrOutOfStock)
}

func TestE2E_FailedPurchaseLeavesCartUnchanged(t *testing.T) {
	e := newEnv(t)
	products := e.seedProducts(t, 2)
	c, rec, _ := e.client(t)
	ctx := context.Background()
	signup(t, c, "ana@example.com", "")

	p := products[1] // stock 2
	require.NoError(t, c.Cart.Add(ctx, p, 2))

	//別の利用者が先に在庫を取った
	_, err := e.srv.Products.Update(ctx, service.SeedActor, p.ID, service.ProductInput{
		Title: p.Title, Code: p.Code, Price: p.Price, Stock: 1, Category: p.Category, Status: true,
	})
	require.NoError(t, err)

	_, err = c.Cart.Purchase(ctx)
	require.Error(t, err)
	line, ok := c.Store.Cart().Line(p.ID)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	last, _ := rec.Last()
	assert.Equal(t, notify.LevelError, last.Level)
}

func TestE2E_AdminFlow(t *testing.T) {
	e := newEnv(t)
	e.seedProducts(t, 1)
	admin, _, _ := e.client(t)
	ctx := context.Background()
	me := signup(t, admin, "boss@example.com", model.RoleAdmin)

	shopper, _, _ := e.client(t)
	ana := signup(t, shopper, "ana@example.com", "")

	created, err := admin.Products.Create(ctx, repo.ProductInput{Title: "Yerba", Code: "Y1", Price: 900, Stock: 4, Category: "almacen", Status: true})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	//カタログが取り直される
	items, _, err := admin.Store.EnsureProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = admin.Products.Create(ctx, repo.ProductInput{Title: "Dup", Code: "Y1", Price: 1})
	require.Error(t, err)

	var buf bytes.Buffer
	n, err := admin.Products.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	users, err := admin.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, usecase.SearchUsers(users, "ana@"), 1)

	assert.ErrorIs(t, admin.Users.Delete(ctx, me.ID), usecase.ErrDeleteSelf)
	require.NoError(t, admin.Users.Delete(ctx, ana.ID))

	//消されたユーザーのセッションは401
	err = shopper.Store.Load(ctx)
	assert.True(t, api.IsUnauthorized(err), "got %v", err)

	//一般ユーザーは管理APIを使えない
	other, _, _ := e.client(t)
	signup(t, other, "bob@example.com", "")
	_, err = other.Products.List(ctx)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, api.KindForbidden, apiErr.Kind)
}

func TestE2E_ShellGuardsAndLogout(t *testing.T) {
	e := newEnv(t)
	e.seedProducts(t, 3)
	c, _, out := e.client(t)
	ctx := context.Background()

	c.Shell.Exec(ctx, "cart")
	assert.Equal(t, router.PathLogin, c.Shell.Current())

	require.NoError(t, c.Auth.Register(ctx, repo.RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com", Age: 30, Password: "password1",
	}))
	c.Shell.Exec(ctx, "login ana@example.com password1")
	assert.Equal(t, router.PathHome, c.Shell.Current())
	assert.Contains(t, out.String(), "Item 01")

	c.Shell.Exec(ctx, "cart")
	assert.Equal(t, router.PathCart, c.Shell.Current())
	assert.Contains(t, out.String(), "Your cart is empty.")

	//管理画面は一般ユーザーだとホームへ
	c.Shell.Exec(ctx, "admin products")
	assert.Equal(t, router.PathHome, c.Shell.Current())

	c.Shell.Exec(ctx, "logout")
	assert.Equal(t, router.PathLogin, c.Shell.Current())
	_, ok := c.Store.User()
	assert.False(t, ok)
}

func TestE2E_ShellHomeRemountResetsViewState(t *testing.T) {
	e := newEnv(t)
	e.seedProducts(t, 4)
	c, _, _ := e.client(t)
	ctx := context.Background()
	signup(t, c, "ana@example.com", "")

	c.Shell.Exec(ctx, "home")
	c.Shell.Exec(ctx, "category bazar")
	c.Shell.Exec(ctx, "sort price-desc")
	assert.Equal(t, "bazar", c.Browse.State().Category)
	assert.Equal(t, catalog.SortPriceDesc, c.Browse.State().Sort)

	//一覧内の操作では保たれる
	c.Shell.Exec(ctx, "home")
	assert.Equal(t, "bazar", c.Browse.State().Category)

	c.Shell.Exec(ctx, "cart")
	c.Shell.Exec(ctx, "home")
	assert.Equal(t, catalog.DefaultViewState(), c.Browse.State())

	//別の画面から直接絞り込んだ場合は初期値の上に適用する
	c.Shell.Exec(ctx, "sort price-desc")
	c.Shell.Exec(ctx, "cart")
	c.Shell.Exec(ctx, "category almacen")
	assert.Equal(t, router.PathHome, c.Shell.Current())
	state := c.Browse.State()
	assert.Equal(t, "almacen", state.Category)
	assert.Equal(t, catalog.SortDefault, state.Sort)
}

func TestE2E_ShellImmediateSearch(t *testing.T) {
	e := newEnv(t)
	e.seedProducts(t, 12)
	c, _, out := e.client(t)
	ctx := context.Background()
	signup(t, c, "ana@example.com", "")

	c.Shell.Exec(ctx, "cart")
	c.Shell.Exec(ctx, "search! item 11")
	assert.Equal(t, router.PathHome, c.Shell.Current())
	assert.Equal(t, "item 11", c.Browse.State().Search)

	view := c.Browse.View(ctx)
	require.Len(t, view.Page.Items, 1)
	assert.Equal(t, "Item 11", view.Page.Items[0].Title)
	assert.Contains(t, out.String(), "Item 11")
}

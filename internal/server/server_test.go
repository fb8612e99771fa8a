package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/server"
	"storefront/internal/server/middleware"
	"storefront/internal/server/service"
	"storefront/internal/server/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:             "0",
		StoreDriver:      config.StoreDriverMemory,
		JWTSecret:        "test-secret",
		SessionTTL:       time.Hour,
		BcryptCost:       4,
		AllowAdminSignup: true,
	}
}

type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newServer(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()
	srv := server.New(testConfig(), store.NewMemoryStore(), nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newAPIClient(t *testing.T, ts *httptest.Server) *apiClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{t: t, base: ts.URL + "/api", http: &http.Client{Jar: jar}}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) *http.Response {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}

func (c *apiClient) signup(email, role string) model.User {
	c.t.Helper()
	var u model.User
	res := c.do(http.MethodPost, "/auth/register", service.RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: email, Age: 30, Password: "password1", Role: role,
	}, &u)
	require.Equal(c.t, http.StatusCreated, res.StatusCode)
	res = c.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "password1"}, nil)
	require.Equal(c.t, http.StatusOK, res.StatusCode)
	return u
}

func TestServer_RequiresSession(t *testing.T) {
	_, ts := newServer(t)
	c := newAPIClient(t, ts)

	var body map[string]string
	res := c.do(http.MethodGet, "/users/current", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "unauthorized", body["error"])
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
}

func TestServer_LoginSetsHttpOnlyCookie(t *testing.T) {
	_, ts := newServer(t)
	c := newAPIClient(t, ts)
	c.do(http.MethodPost, "/auth/register", service.RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com", Age: 30, Password: "password1",
	}, nil)

	res := c.do(http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var session *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == middleware.SessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	var me model.User
	res = c.do(http.MethodGet, "/users/current", nil, &me)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ana@example.com", me.Email)
	assert.NotEmpty(t, me.CartID)
}

func TestServer_LogoutRevokesToken(t *testing.T) {
	_, ts := newServer(t)
	c := newAPIClient(t, ts)
	c.signup("ana@example.com", "")

	//ログアウト前のcookieを控えておく
	u, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	old := c.http.Jar.Cookies(u.URL)
	require.NotEmpty(t, old)

	res := c.do(http.MethodPost, "/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = c.do(http.MethodGet, "/users/current", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	//古いトークンを使い回しても401
	c.http.Jar.SetCookies(u.URL, old)
	res = c.do(http.MethodGet, "/users/current", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestServer_AdminRoutesNeedAdminRole(t *testing.T) {
	_, ts := newServer(t)
	user := newAPIClient(t, ts)
	user.signup("ana@example.com", "")

	var body map[string]string
	res := user.do(http.MethodGet, "/admin/users", nil, &body)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "admin only", body["error"])

	res = user.do(http.MethodPost, "/products", service.ProductInput{Title: "X", Code: "X"}, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	admin := newAPIClient(t, ts)
	admin.signup("boss@example.com", "admin")
	var users []model.User
	res = admin.do(http.MethodGet, "/admin/users", nil, &users)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, users, 2)
}

func TestServer_CartFlow(t *testing.T) {
	srv, ts := newServer(t)
	p, err := srv.Products.Create(context.Background(), "seed", service.ProductInput{
		Title: "Mate", Code: "M1", Price: 1200, Stock: 3, Category: "bazar", Status: true,
	})
	require.NoError(t, err)

	c := newAPIClient(t, ts)
	me := c.signup("ana@example.com", "")
	cartPath := "/users/carts/" + me.CartID

	var products []model.Product
	res := c.do(http.MethodGet, "/users/products?limit=10", nil, &products)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, products, 1)

	res = c.do(http.MethodPost, cartPath+"/products/"+p.ID, map[string]int{"quantity": 2}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]string
	res = c.do(http.MethodPut, cartPath+"/products/"+p.ID, map[string]int{"quantity": 9}, &body)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "stock exceeded", body["error"])

	var cart model.Cart
	res = c.do(http.MethodGet, cartPath, nil, &cart)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 2, cart.Products[0].Quantity)

	var result model.PurchaseResult
	res = c.do(http.MethodPost, cartPath+"/purchase", nil, &result)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, 2400.0, result.Ticket.Amount)
	assert.Empty(t, result.Unavailable)

	//他人のカートは403
	other := newAPIClient(t, ts)
	other.signup("bob@example.com", "")
	res = other.do(http.MethodGet, cartPath, nil, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestServer_TicketsAndAuditLogs(t *testing.T) {
	srv, ts := newServer(t)
	p, err := srv.Products.Create(context.Background(), "seed", service.ProductInput{
		Title: "Mate", Code: "M1", Price: 1200, Stock: 5, Category: "bazar", Status: true,
	})
	require.NoError(t, err)

	c := newAPIClient(t, ts)
	me := c.signup("ana@example.com", "")
	cartPath := "/users/carts/" + me.CartID

	var tickets []model.Ticket
	res := c.do(http.MethodGet, "/users/tickets", nil, &tickets)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, tickets)

	for _, qty := range []int{1, 2} {
		res = c.do(http.MethodPost, cartPath+"/products/"+p.ID, map[string]int{"quantity": qty}, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		res = c.do(http.MethodPost, cartPath+"/purchase", nil, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	//新しい順、自分の分だけ
	res = c.do(http.MethodGet, "/users/tickets", nil, &tickets)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, tickets, 2)
	assert.Equal(t, 2400.0, tickets[0].Amount)
	assert.Equal(t, 1200.0, tickets[1].Amount)
	assert.Equal(t, "ana@example.com", tickets[0].Purchaser)

	other := newAPIClient(t, ts)
	other.signup("bob@example.com", "")
	res = other.do(http.MethodGet, "/users/tickets", nil, &tickets)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, tickets)

	//監査ログは管理者だけ
	res = c.do(http.MethodGet, "/admin/audit-logs", nil, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	admin := newAPIClient(t, ts)
	admin.signup("boss@example.com", "admin")
	var logs []model.AuditLog
	res = admin.do(http.MethodGet, "/admin/audit-logs?limit=2", nil, &logs)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, logs, 2)
	assert.Equal(t, model.AuditActionPurchase, logs[0].Action)
	assert.Equal(t, me.ID, logs[0].ActorUserID)

	res = admin.do(http.MethodGet, "/admin/audit-logs", nil, &logs)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, logs, 3)
	assert.Equal(t, model.AuditActionCreateProduct, logs[2].Action)

	var body map[string]string
	res = admin.do(http.MethodGet, "/admin/audit-logs?limit=500", nil, &body)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "limit must be between 1 and 200", body["error"])
	res = admin.do(http.MethodGet, "/admin/audit-logs?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

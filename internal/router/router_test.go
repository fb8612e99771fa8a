package router_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	user *model.User
}

func (f *fakeSession) User() (model.User, bool) {
	if f.user == nil {
		return model.User{}, false
	}
	return *f.user, true
}

func newRouter(s router.Session, visited *[]string) *router.Router {
	r := router.New(s, nil)
	record := func(name string) router.Handler {
		return func(ctx context.Context, p router.Params) error {
			*visited = append(*visited, name+p.Get("pid"))
			return nil
		}
	}
	r.Handle(router.PathHome, record("home"))
	r.Handle(router.PathLogin, record("login"), router.RequireGuest())
	r.Handle(router.PathProduct, record("product:"), router.RequireAuth())
	r.Handle(router.PathCart, record("cart"), router.RequireAuth())
	r.Handle(router.PathAdminUsers, record("admin-users"), router.RequireAdmin())
	r.Handle("/boom", func(ctx context.Context, p router.Params) error { panic("kaboom") })
	return r
}

func TestNavigate_AnonymousIsRedirectedToLogin(t *testing.T) {
	var visited []string
	r := newRouter(&fakeSession{}, &visited)

	path, err := r.Navigate(context.Background(), "/cart")
	require.NoError(t, err)
	assert.Equal(t, router.PathLogin, path)
	assert.Equal(t, []string{"login"}, visited)
}

func TestNavigate_NonAdminIsRedirectedHome(t *testing.T) {
	var visited []string
	r := newRouter(&fakeSession{user: &model.User{ID: "u1", Role: model.RoleUser}}, &visited)

	path, err := r.Navigate(context.Background(), "/admin/users")
	require.NoError(t, err)
	assert.Equal(t, router.PathHome, path)
	assert.Equal(t, []string{"home"}, visited)
}

func TestNavigate_AdminAndParams(t *testing.T) {
	var visited []string
	r := newRouter(&fakeSession{user: &model.User{ID: "a", Role: model.RoleAdmin}}, &visited)

	_, err := r.Navigate(context.Background(), "/admin/users")
	require.NoError(t, err)
	_, err = r.Navigate(context.Background(), "/products/p42")
	require.NoError(t, err)
	//ログイン済みでログイン画面はホームへ
	path, err := r.Navigate(context.Background(), "/auth/login")
	require.NoError(t, err)

	assert.Equal(t, router.PathHome, path)
	assert.Equal(t, []string{"admin-users", "product:p42", "home"}, visited)
}

func TestNavigate_NotFound(t *testing.T) {
	var visited []string
	r := newRouter(&fakeSession{}, &visited)

	_, err := r.Navigate(context.Background(), "/nope")
	assert.ErrorIs(t, err, router.ErrNotFound)
	_, err = r.Navigate(context.Background(), "/products/")
	assert.ErrorIs(t, err, router.ErrNotFound)
}

func TestNavigate_PanicBecomesPanicError(t *testing.T) {
	var visited []string
	r := newRouter(&fakeSession{}, &visited)

	_, err := r.Navigate(context.Background(), "/boom")
	var pe *router.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "kaboom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestChain_FirstFailureWins(t *testing.T) {
	deny := func(to string) router.Guard {
		return func(router.Session) (string, bool) { return to, false }
	}
	g := router.Chain(router.RequireAuth(), deny("/x"))

	redirect, ok := g(&fakeSession{})
	assert.False(t, ok)
	assert.Equal(t, router.PathLogin, redirect)

	redirect, ok = g(&fakeSession{user: &model.User{}})
	assert.False(t, ok)
	assert.Equal(t, "/x", redirect)

	_, ok = router.Chain()(&fakeSession{})
	assert.True(t, ok)
}

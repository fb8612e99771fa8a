package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/server/service"
	"storefront/internal/server/store"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Fakes / Mocks
// =====================

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ハッシュは"hash:"+平文
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }
func (plainHasher) Verify(plain, hashed string) bool  { return hashed == "hash:"+plain }

type IssuerMock struct{ mock.Mock }

func (m *IssuerMock) Issue(userID string, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, role, tokenVersion, now)
	return args.String(0), now.Add(time.Hour), args.Error(1)
}

type MailerMock struct{ mock.Mock }

func (m *MailerMock) SendPurchaseConfirmation(ctx context.Context, to model.User, t model.Ticket, lines []model.CartLine) error {
	args := m.Called(ctx, to, t, lines)
	return args.Error(0)
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *store.MemoryStore
	auth     *service.AuthService
	products *service.ProductService
	carts    *service.CartService
	users    *service.UserService
	issuer   *IssuerMock
	mailer   *MailerMock
}

func newFixture(t *testing.T, allowAdmin bool) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	ids := &seqIDs{}
	clock := fixedClock{t: now}
	f := &fixture{store: st, issuer: &IssuerMock{}, mailer: &MailerMock{}}
	f.auth = service.NewAuthService(st, plainHasher{}, plainHasher{}, f.issuer, ids, clock,
		service.AuthOptions{AllowAdminSignup: allowAdmin})
	f.products = service.NewProductService(st, ids, clock, nil)
	f.carts = service.NewCartService(st, ids, clock, f.mailer, nil)
	f.users = service.NewUserService(st, clock, nil)
	return f
}

func (f *fixture) register(t *testing.T, email string) model.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), service.RegisterInput{
		FirstName: "Ana", LastName: "Diaz", Email: email, Age: 30, Password: "password1",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, code string, price float64, stock int) model.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), "admin", service.ProductInput{
		Title: "Item " + code, Code: code, Price: price, Stock: stock, Category: "misc", Status: true,
	})
	require.NoError(t, err)
	return p
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := service.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, status, he.Status, he.Message)
}

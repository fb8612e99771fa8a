package usecase_test

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type SessionRepoMock struct{ mock.Mock }

func (m *SessionRepoMock) Current(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *SessionRepoMock) UpdateCurrent(ctx context.Context, in repo.ProfileInput) (model.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, in repo.ProductInput) (model.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, id string, in repo.ProductInput) (model.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) FindByID(ctx context.Context, cartID string) (model.Cart, error) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) AddLine(ctx context.Context, cartID, productID string, qty int) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *CartRepoMock) SetQuantity(ctx context.Context, cartID, productID string, qty int) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *CartRepoMock) RemoveLine(ctx context.Context, cartID, productID string) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

func (m *CartRepoMock) Purchase(ctx context.Context, cartID string, timeout time.Duration) (model.PurchaseResult, error) {
	args := m.Called(ctx, cartID, timeout)
	r, _ := args.Get(0).(model.PurchaseResult)
	return r, args.Error(1)
}

type AuthRepoMock struct{ mock.Mock }

func (m *AuthRepoMock) Login(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthRepoMock) Register(ctx context.Context, in repo.RegisterInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *AuthRepoMock) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// サーバー側のカートを真似る（数量の増減を追う）
// =====================

type fakeCartRepo struct {
	mu       sync.Mutex
	products map[string]model.Product
	lines    []model.CartLine
	calls    []string
}

func newFakeCartRepo(products ...model.Product) *fakeCartRepo {
	f := &fakeCartRepo{products: map[string]model.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCartRepo) FindByID(ctx context.Context, cartID string) (model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]model.CartLine, len(f.lines))
	copy(lines, f.lines)
	return model.Cart{ID: cartID, Products: lines}, nil
}

func (f *fakeCartRepo) AddLine(ctx context.Context, cartID, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "add")
	for i := range f.lines {
		if f.lines[i].Product.ID == productID {
			f.lines[i].Quantity += qty
			return nil
		}
	}
	f.lines = append(f.lines, model.CartLine{Product: f.products[productID], Quantity: qty})
	return nil
}

func (f *fakeCartRepo) SetQuantity(ctx context.Context, cartID, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "set")
	for i := range f.lines {
		if f.lines[i].Product.ID == productID {
			f.lines[i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeCartRepo) RemoveLine(ctx context.Context, cartID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "remove")
	out := f.lines[:0]
	for _, l := range f.lines {
		if l.Product.ID != productID {
			out = append(out, l)
		}
	}
	f.lines = out
	return nil
}

func (f *fakeCartRepo) Clear(ctx context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "clear")
	f.lines = nil
	return nil
}

func (f *fakeCartRepo) Purchase(ctx context.Context, cartID string, timeout time.Duration) (model.PurchaseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "purchase")
	f.lines = nil
	return model.PurchaseResult{Ticket: &model.Ticket{Code: "T-1"}}, nil
}

func (f *fakeCartRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

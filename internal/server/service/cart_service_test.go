package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/server/service"
	"storefront/internal/server/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCart_OwnerOnly(t *testing.T) {
	f := newFixture(t, false)
	ana := f.register(t, "ana@example.com")
	bob := f.register(t, "bob@example.com")

	_, err := f.carts.Get(context.Background(), bob, ana.CartID)
	requireStatus(t, err, http.StatusForbidden)

	err = f.carts.AddProduct(context.Background(), bob, ana.CartID, "p", 1)
	requireStatus(t, err, http.StatusForbidden)
}

func TestCart_AddCapsByStock(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "ana@example.com")
	p := f.product(t, "A", 100, 3)
	empty := f.product(t, "E", 100, 0)

	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 2))
	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 1))
	requireStatus(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 1), http.StatusBadRequest)
	requireStatus(t, f.carts.AddProduct(ctx, u, u.CartID, empty.ID, 1), http.StatusBadRequest)
	requireStatus(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 0), http.StatusBadRequest)
	requireStatus(t, f.carts.AddProduct(ctx, u, u.CartID, "missing", 1), http.StatusNotFound)

	cart, err := f.carts.Get(ctx, u, u.CartID)
	require.NoError(t, err)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 3, cart.Products[0].Quantity)
	assert.Equal(t, "Item A", cart.Products[0].Product.Title)
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "ana@example.com")
	p := f.product(t, "A", 100, 5)

	require.NoError(t, f.carts.SetQuantity(ctx, u, u.CartID, p.ID, 4))
	requireStatus(t, f.carts.SetQuantity(ctx, u, u.CartID, p.ID, 6), http.StatusBadRequest)

	//0は削除
	require.NoError(t, f.carts.SetQuantity(ctx, u, u.CartID, p.ID, 0))
	cart, _ := f.carts.Get(ctx, u, u.CartID)
	assert.Empty(t, cart.Products)

	requireStatus(t, f.carts.RemoveProduct(ctx, u, u.CartID, p.ID), http.StatusNotFound)
}

func TestCart_Clear(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "ana@example.com")
	p := f.product(t, "A", 100, 5)
	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 2))

	require.NoError(t, f.carts.Clear(ctx, u, u.CartID))

	cart, _ := f.carts.Get(ctx, u, u.CartID)
	assert.Empty(t, cart.Products)
}

func TestCart_PurchaseBuysAvailableLinesAndKeepsTheRest(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "ana@example.com")
	a := f.product(t, "A", 1000.10, 5)
	b := f.product(t, "B", 500, 2)
	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, a.ID, 2))
	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, b.ID, 2))

	//別の購入でBの在庫が減った
	_, err := f.store.Products().DecreaseStockIfEnough(ctx, b.ID, 1)
	require.NoError(t, err)

	f.mailer.On("SendPurchaseConfirmation", mock.Anything, mock.MatchedBy(func(to model.User) bool {
		return to.Email == "ana@example.com"
	}), mock.Anything, mock.MatchedBy(func(lines []model.CartLine) bool {
		return len(lines) == 1 && lines[0].Product.ID == a.ID
	})).Return(nil).Once()

	res, err := f.carts.Purchase(ctx, u, u.CartID)
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, 2000.2, res.Ticket.Amount)
	assert.Equal(t, "ana@example.com", res.Ticket.Purchaser)
	assert.Equal(t, now, res.Ticket.PurchaseDatetime)
	assert.Len(t, res.Ticket.Code, 12)
	assert.Equal(t, []string{b.ID}, res.Unavailable)
	f.mailer.AssertExpectations(t)

	//買えなかった行は残る
	cart, _ := f.carts.Get(ctx, u, u.CartID)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, b.ID, cart.Products[0].Product.ID)

	pa, _ := f.store.Products().FindByID(ctx, a.ID)
	assert.Equal(t, 3, pa.Stock)

	tickets, _ := f.store.Tickets().ListByPurchaser(ctx, u.Email)
	assert.Len(t, tickets, 1)
}

func TestCart_PurchaseNothingAvailableLeavesCartUnchanged(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "ana@example.com")
	p := f.product(t, "A", 10, 2)
	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 2))
	_, err := f.store.Products().DecreaseStockIfEnough(ctx, p.ID, 1)
	require.NoError(t, err)

	_, err = f.carts.Purchase(ctx, u, u.CartID)
	requireStatus(t, err, http.StatusBadRequest)

	cart, _ := f.carts.Get(ctx, u, u.CartID)
	require.Len(t, cart.Products, 1)
	assert.Equal(t, 2, cart.Products[0].Quantity)
	f.mailer.AssertNotCalled(t, "SendPurchaseConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCart_PurchaseEmptyCart(t *testing.T) {
	f := newFixture(t, false)
	u := f.register(t, "ana@example.com")

	_, err := f.carts.Purchase(context.Background(), u, u.CartID)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCart_PurchaseMailFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "ana@example.com")
	p := f.product(t, "A", 10, 2)
	require.NoError(t, f.carts.AddProduct(ctx, u, u.CartID, p.ID, 1))
	f.mailer.On("SendPurchaseConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down")).Once()

	res, err := f.carts.Purchase(ctx, u, u.CartID)
	require.NoError(t, err)
	assert.Empty(t, res.Unavailable)
}

func TestUsers_DeleteRemovesCartAndRejectsSelf(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	admin := f.register(t, "admin@example.com")
	ana := f.register(t, "ana@example.com")

	requireStatus(t, f.users.Delete(ctx, admin.ID, admin.ID), http.StatusBadRequest)

	require.NoError(t, f.users.Delete(ctx, admin.ID, ana.ID))
	_, err := f.store.Users().FindByID(ctx, ana.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	ok, _ := f.store.Carts().Exists(ctx, ana.CartID)
	assert.False(t, ok)

	requireStatus(t, f.users.Delete(ctx, admin.ID, ana.ID), http.StatusNotFound)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestApplySeed_SkipsExisting(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	seed := store.Seed{
		Users: []store.SeedUser{{FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", Age: 30, Password: "password1", Role: "admin"}},
		Products: []store.SeedProduct{
			{Title: "Mate", Code: "M1", Price: 10, Stock: 1},
		},
	}

	res, err := service.ApplySeed(ctx, seed, f.auth, f.products)
	require.NoError(t, err)
	assert.Equal(t, service.SeedResult{Users: 1, Products: 1}, res)

	//管理者の登録ゲートは通らない
	admin, err := f.store.Users().FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	res, err = service.ApplySeed(ctx, seed, f.auth, f.products)
	require.NoError(t, err)
	assert.Equal(t, service.SeedResult{Skipped: 2}, res)
}

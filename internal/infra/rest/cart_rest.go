package rest

import (
	"context"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CartRestRepository struct {
	c *api.Client
}

// DI
func NewCartRestRepository(c *api.Client) *CartRestRepository {
	return &CartRestRepository{c: c}
}

var _ repo.CartRepository = (*CartRestRepository)(nil)

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (r *CartRestRepository) FindByID(ctx context.Context, cartID string) (model.Cart, error) {
	var cart model.Cart
	if err := r.c.Get(ctx, api.Path("users", "carts", cartID), &cart); err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

func (r *CartRestRepository) AddLine(ctx context.Context, cartID, productID string, qty int) error {
	path := api.Path("users", "carts", cartID, "products", productID)
	return translate(r.c.Post(ctx, path, quantityRequest{Quantity: qty}, nil))
}

func (r *CartRestRepository) SetQuantity(ctx context.Context, cartID, productID string, qty int) error {
	path := api.Path("users", "carts", cartID, "products", productID)
	return translate(r.c.Put(ctx, path, quantityRequest{Quantity: qty}, nil))
}

func (r *CartRestRepository) RemoveLine(ctx context.Context, cartID, productID string) error {
	path := api.Path("users", "carts", cartID, "products", productID)
	return translate(r.c.Delete(ctx, path, nil))
}

func (r *CartRestRepository) Clear(ctx context.Context, cartID string) error {
	return translate(r.c.Delete(ctx, api.Path("users", "carts", cartID), nil))
}

func (r *CartRestRepository) Purchase(ctx context.Context, cartID string, timeout time.Duration) (model.PurchaseResult, error) {
	var out model.PurchaseResult
	path := api.Path("users", "carts", cartID, "purchase")
	if err := r.c.Post(ctx, path, nil, &out, api.Timeout(timeout)); err != nil {
		return model.PurchaseResult{}, translate(err)
	}
	return out, nil
}

package rest

import (
	"context"
	"strconv"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type ProductRestRepository struct {
	c *api.Client
}

// DI
func NewProductRestRepository(c *api.Client) *ProductRestRepository {
	return &ProductRestRepository{c: c}
}

var _ repo.ProductRepository = (*ProductRestRepository)(nil)

func (r *ProductRestRepository) List(ctx context.Context, limit int) ([]model.Product, error) {
	var out []model.Product
	err := r.c.Get(ctx, "/users/products", &out, api.Query("limit", strconv.Itoa(limit)))
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *ProductRestRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	if err := r.c.Get(ctx, api.Path("users", "products", id), &p); err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 管理画面用（limit無しで全件）
func (r *ProductRestRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := r.c.Get(ctx, "/products", &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *ProductRestRepository) Create(ctx context.Context, in repo.ProductInput) (model.Product, error) {
	var p model.Product
	if err := r.c.Post(ctx, "/products", in, &p); err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductRestRepository) Update(ctx context.Context, id string, in repo.ProductInput) (model.Product, error) {
	var p model.Product
	if err := r.c.Put(ctx, api.Path("products", id), in, &p); err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductRestRepository) Delete(ctx context.Context, id string) error {
	return translate(r.c.Delete(ctx, api.Path("products", id), nil))
}

package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の作成・更新の入力（管理画面）
type ProductInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Img         string  `json:"img"`
	Code        string  `json:"code"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Status      bool    `json:"status"`
}

// 商品カタログの取得・管理を約束
type ProductRepository interface {
	// ログインユーザー向けカタログ（GET /users/products?limit=N）
	List(ctx context.Context, limit int) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	// 管理画面（/products）
	ListAll(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, in ProductInput) (model.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (model.Product, error)
	Delete(ctx context.Context, id string) error
}

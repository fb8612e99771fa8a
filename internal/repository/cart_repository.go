package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// カート資源の操作。どれも成功後に呼び出し側がFindByIDで取り直す
type CartRepository interface {
	FindByID(ctx context.Context, cartID string) (model.Cart, error)
	// 同一商品は数量を加算
	AddLine(ctx context.Context, cartID, productID string, qty int) error
	SetQuantity(ctx context.Context, cartID, productID string, qty int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
	// 購入は通常より長いタイムアウトで送る
	Purchase(ctx context.Context, cartID string, timeout time.Duration) (model.PurchaseResult, error)
}

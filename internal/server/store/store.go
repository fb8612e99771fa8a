// Package store はstoreapiの永続化。gorm（Postgres）とメモリの2実装
package store

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	//ユニーク制約違反（email・code）
	ErrConflict = errors.New("conflict")
)

// カートの1行（商品はIDだけ持つ）
type Line struct {
	ProductID string
	Quantity  int
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, u model.User) error
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id string) error
	// ログアウトで発行済みトークンを失効させる
	BumpTokenVersion(ctx context.Context, id string) error
}

type ProductRepository interface {
	// activeOnlyならstatus=trueだけ。登録順
	List(ctx context.Context, limit int, activeOnly bool) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
	// 在庫が足りるときだけ減らす
	DecreaseStockIfEnough(ctx context.Context, id string, qty int) (bool, error)
}

type CartRepository interface {
	Create(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Lines(ctx context.Context, cartID string) ([]Line, error)
	// 同一商品は数量を加算
	AddLine(ctx context.Context, cartID, productID string, qty int) error
	SetLine(ctx context.Context, cartID, productID string, qty int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
	Delete(ctx context.Context, cartID string) error
}

type TicketRepository interface {
	Create(ctx context.Context, t *model.Ticket) error
	ListByPurchaser(ctx context.Context, email string) ([]model.Ticket, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// Reposはトランザクション内でも外でも同じ形で使う
type Repos interface {
	Users() UserRepository
	Products() ProductRepository
	Carts() CartRepository
	Tickets() TicketRepository
	AuditLogs() AuditLogRepository
}

type Store interface {
	Repos
	// fnがエラーを返したら全部取り消す
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/server/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cartsテーブル。中身はcart_linesに持つ
type cartRow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

// cart_linesテーブル。(cart_id, product_id)で1行
type cartLineRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	CartID    string `gorm:"type:varchar(36);not null;uniqueIndex:ux_cart_product"`
	ProductID string `gorm:"type:varchar(36);not null;uniqueIndex:ux_cart_product"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartLineRow) TableName() string { return "cart_lines" }

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) Create(ctx context.Context, id string) error {
	return mapErr(r.db.WithContext(ctx).Create(&cartRow{ID: id}).Error)
}

func (r *CartGormRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&cartRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// 追加した順で返す
func (r *CartGormRepository) Lines(ctx context.Context, cartID string) ([]store.Line, error) {
	var rows []cartLineRow
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return []store.Line{}, err
	}

	lines := make([]store.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, store.Line{ProductID: row.ProductID, Quantity: row.Quantity})
	}
	return lines, nil
}

// 同一商品は数量加算
func (r *CartGormRepository) AddLine(ctx context.Context, cartID, productID string, qty int) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line cartLineRow

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			First(&line).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			return affected(tx.Model(&cartLineRow{}).
				Where("id = ?", line.ID).
				Update("quantity", line.Quantity+qty))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		return mapErr(tx.Create(&cartLineRow{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  qty,
		}).Error)
	})
}

// 数量を上書き。行が無ければ作る
func (r *CartGormRepository) SetLine(ctx context.Context, cartID, productID string, qty int) error {
	if qty <= 0 {
		return r.RemoveLine(ctx, cartID, productID)
	}

	row := cartLineRow{CartID: cartID, ProductID: productID, Quantity: qty}
	return mapErr(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&row).Error)
}

func (r *CartGormRepository) RemoveLine(ctx context.Context, cartID, productID string) error {
	return affected(r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&cartLineRow{}))
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID string) error {
	ok, err := r.Exists(ctx, cartID)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&cartLineRow{}).Error
}

// カートごと削除（ユーザー削除時）
func (r *CartGormRepository) Delete(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&cartLineRow{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ?", cartID).Delete(&cartRow{}))
	})
}

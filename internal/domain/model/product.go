package model

import "time"

// 在庫少の閾値（0 < stock < LowStockThreshold）
const LowStockThreshold = 10

type StockLevel int

const (
	StockAvailable StockLevel = iota
	StockLow
	StockOut
)

func (l StockLevel) String() string {
	switch l {
	case StockLow:
		return "low stock"
	case StockOut:
		return "out of stock"
	default:
		return "in stock"
	}
}

// カタログの商品。Codeはユニーク、Statusは公開フラグ
type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	Img         string    `json:"img,omitempty"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"`
	Stock       int       `gorm:"not null" json:"stock"`
	Category    string    `gorm:"type:varchar(100);index" json:"category"`
	Status      bool      `gorm:"not null" json:"status"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock < LowStockThreshold:
		return StockLow
	default:
		return StockAvailable
	}
}

// 在庫0の商品はカートに追加できない
func (p Product) Purchasable() bool {
	return p.Stock > 0
}

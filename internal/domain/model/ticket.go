package model

import "time"

// 購入時に発行されるチケット
type Ticket struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Code             string    `gorm:"uniqueIndex;not null" json:"code"`
	Amount           float64   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Purchaser        string    `gorm:"index;not null" json:"purchaser"`
	PurchaseDatetime time.Time `gorm:"not null" json:"purchase_datetime"`
}

// POST /users/carts/:cid/purchase のレスポンス。
// 在庫が足りなかった商品はUnavailableに入り、カートに残る
type PurchaseResult struct {
	Ticket      *Ticket  `json:"ticket,omitempty"`
	Unavailable []string `json:"unavailable_products"`
}

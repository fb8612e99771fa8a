package model

import "github.com/shopspring/decimal"

// カートの明細。Quantityは常に1以上
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	ID       string     `json:"_id"`
	Products []CartLine `json:"products"`
}

// 数量の合計（ナビバーのバッジ）。nilなら0
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Products {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Products) == 0
}

// productIDの明細を探す
func (c *Cart) Line(productID string) (CartLine, bool) {
	if c == nil {
		return CartLine{}, false
	}
	for _, l := range c.Products {
		if l.Product.ID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// 明細の小計の合計
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, l := range c.Products {
		total = total.Add(l.Subtotal())
	}
	return total
}

// 明細をコピーしたカートを返す（ストアの外に渡す用）
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := &Cart{ID: c.ID, Products: make([]CartLine, len(c.Products))}
	copy(out.Products, c.Products)
	return out
}

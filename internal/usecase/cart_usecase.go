package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/notify"
	repo "storefront/internal/repository"
	"storefront/internal/session"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// 購入のタイムアウト（通常の10秒より長い）
const DefaultPurchaseTimeout = 60 * time.Second

// 送料。小計がFreeShippingThresholdを超えたら無料
type Pricing struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		ShippingFee:           decimal.NewFromInt(1500),
		FreeShippingThreshold: decimal.NewFromInt(50000),
	}
}

func (p Pricing) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// カート画面の合計
type CartSummary struct {
	Lines     []model.CartLine
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// 購入・全削除の実行中フラグ
type CartBusy struct {
	Clearing   bool
	Purchasing bool
}

type CartOptions struct {
	Pricing         Pricing
	PurchaseTimeout time.Duration
	Logger          *log.Logger
}

// CartUsecaseはカートの変更を送り、成功したらストアのカートを取り直す。
// ローカルで数量を書き換えることはしない
type CartUsecase struct {
	store    *session.Store
	carts    repo.CartRepository
	notifier notify.Notifier

	pricing         Pricing
	purchaseTimeout time.Duration
	log             *log.Logger

	busy busy[CartBusy]
}

// DI
func NewCartUsecase(store *session.Store, carts repo.CartRepository, notifier notify.Notifier, opts CartOptions) *CartUsecase {
	if opts.PurchaseTimeout <= 0 {
		opts.PurchaseTimeout = DefaultPurchaseTimeout
	}
	if opts.Pricing == (Pricing{}) {
		opts.Pricing = DefaultPricing()
	}
	return &CartUsecase{
		store:           store,
		carts:           carts,
		notifier:        notifier,
		pricing:         opts.Pricing,
		purchaseTimeout: opts.PurchaseTimeout,
		log:             loggerOrDiscard(opts.Logger, "cart"),
	}
}

// Addは商品を数量qtyで追加する（同一商品は加算）。数量は在庫で頭打ち
func (u *CartUsecase) Add(ctx context.Context, p model.Product, qty int) error {
	if !p.Purchasable() {
		notify.Error(u.notifier, "Could not add to cart", ErrOutOfStock.Error())
		return ErrOutOfStock
	}
	if qty < 1 {
		qty = 1
	}

	inCart := 0
	if line, ok := u.store.Cart().Line(p.ID); ok {
		inCart = line.Quantity
	}
	if inCart >= p.Stock {
		notify.Error(u.notifier, "Could not add to cart", ErrStockExceeded.Error())
		return ErrStockExceeded
	}
	if inCart+qty > p.Stock {
		qty = p.Stock - inCart
	}

	err := u.mutate(ctx, "add line", "Could not add to cart", func(cartID string) error {
		return u.carts.AddLine(ctx, cartID, p.ID, qty)
	})
	if err != nil {
		return err
	}
	notify.Success(u.notifier, "Added to cart", p.Title)
	return nil
}

// UpdateQuantityは数量を置き換える。0以下は明細の削除として扱う
func (u *CartUsecase) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return u.Remove(ctx, productID)
	}
	return u.mutate(ctx, "set quantity", "Could not update quantity", func(cartID string) error {
		return u.carts.SetQuantity(ctx, cartID, productID, qty)
	})
}

func (u *CartUsecase) Increment(ctx context.Context, productID string) error {
	line, ok := u.store.Cart().Line(productID)
	if !ok {
		return u.mutate(ctx, "add line", "Could not update quantity", func(cartID string) error {
			return u.carts.AddLine(ctx, cartID, productID, 1)
		})
	}
	if line.Product.Stock > 0 && line.Quantity >= line.Product.Stock {
		notify.Error(u.notifier, "Could not update quantity", ErrStockExceeded.Error())
		return ErrStockExceeded
	}
	return u.UpdateQuantity(ctx, productID, line.Quantity+1)
}

// 明細が無ければ何もしない
func (u *CartUsecase) Decrement(ctx context.Context, productID string) error {
	line, ok := u.store.Cart().Line(productID)
	if !ok {
		return nil
	}
	return u.UpdateQuantity(ctx, productID, line.Quantity-1)
}

func (u *CartUsecase) Remove(ctx context.Context, productID string) error {
	err := u.mutate(ctx, "remove line", "Could not remove product", func(cartID string) error {
		return u.carts.RemoveLine(ctx, cartID, productID)
	})
	if err != nil {
		return err
	}
	notify.Success(u.notifier, "Product removed", "")
	return nil
}

func (u *CartUsecase) Clear(ctx context.Context) error {
	if !u.busy.begin(func(b *CartBusy) *bool { return &b.Clearing }) {
		return ErrBusy
	}
	defer u.busy.end(func(b *CartBusy) *bool { return &b.Clearing })

	err := u.mutate(ctx, "clear cart", "Could not empty the cart", func(cartID string) error {
		return u.carts.Clear(ctx, cartID)
	})
	if err != nil {
		return err
	}
	notify.Success(u.notifier, "Cart emptied", "")
	return nil
}

// Purchaseは購入を試みる。どの明細が残るかはサーバーが決める。
// 失敗時はカートを変えず、詳細は出さずに通知する
func (u *CartUsecase) Purchase(ctx context.Context) (model.PurchaseResult, error) {
	if !u.busy.begin(func(b *CartBusy) *bool { return &b.Purchasing }) {
		return model.PurchaseResult{}, ErrBusy
	}
	defer u.busy.end(func(b *CartBusy) *bool { return &b.Purchasing })

	var res model.PurchaseResult
	err := u.mutate(ctx, "purchase", "Purchase failed", func(cartID string) error {
		var err error
		res, err = u.carts.Purchase(ctx, cartID, u.purchaseTimeout)
		return err
	})
	//購入自体は通っている。再取得の失敗はmutateが通知済み
	if err != nil && !errors.Is(err, ErrCartRefresh) {
		return model.PurchaseResult{}, err
	}

	if res.Ticket != nil {
		notify.Success(u.notifier, "Purchase completed", "ticket "+res.Ticket.Code)
	}
	if len(res.Unavailable) > 0 {
		notify.Info(u.notifier, "Some products stayed in your cart", "not enough stock")
	}
	return res, nil
}

// 現在のキャッシュから合計を出す
func (u *CartUsecase) Summary() CartSummary {
	cart := u.store.Cart()
	subtotal := cart.Subtotal()
	shipping := u.pricing.Shipping(subtotal)

	var lines []model.CartLine
	if cart != nil {
		lines = cart.Products
	}
	return CartSummary{
		Lines:     lines,
		ItemCount: cart.ItemCount(),
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
	}
}

func (u *CartUsecase) Busy() CartBusy {
	return u.busy.snapshot()
}

// mutateは変更→カート再取得。変更に失敗したらキャッシュには触らない
func (u *CartUsecase) mutate(ctx context.Context, op, failTitle string, fn func(cartID string) error) error {
	cartID, err := u.store.CartID()
	if err != nil {
		notify.Error(u.notifier, failTitle, "sign in to use the cart")
		return err
	}

	if err := fn(cartID); err != nil {
		u.log.Warnf("%s cart=%s: %v", op, cartID, err)
		if op == "purchase" {
			notify.Error(u.notifier, failTitle, "please try again later")
		} else {
			notify.Error(u.notifier, failTitle, api.Message(err, "please try again"))
		}
		return err
	}

	if err := u.store.RefreshCart(ctx); err != nil {
		u.log.Warnf("refresh after %s cart=%s: %v", op, cartID, err)
		notify.Error(u.notifier, "Could not refresh the cart", api.Message(err, "please reload"))
		return fmt.Errorf("%w: %w", ErrCartRefresh, err)
	}
	return nil
}

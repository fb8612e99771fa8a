package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/server/store"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

// 購入確認メールの送信
type PurchaseMailer interface {
	SendPurchaseConfirmation(ctx context.Context, to model.User, ticket model.Ticket, lines []model.CartLine) error
}

// /users/carts/:cid の業務ロジック。カートは本人のものだけ触れる
type CartService struct {
	store  store.Store
	idGen  IDGenerator
	clock  Clock
	mailer PurchaseMailer
	logger *log.Logger
}

// DI
func NewCartService(s store.Store, idGen IDGenerator, clock Clock, mailer PurchaseMailer, logger *log.Logger) *CartService {
	return &CartService{store: s, idGen: idGen, clock: clock, mailer: mailer, logger: loggerOrDiscard(logger)}
}

// 他人のカートは403
func (s *CartService) own(user model.User, cartID string) error {
	if cartID == "" || user.CartID != cartID {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

// カートの明細を商品つきで返す（消えた商品の行は飛ばす）
func (s *CartService) Get(ctx context.Context, user model.User, cartID string) (model.Cart, error) {
	if err := s.own(user, cartID); err != nil {
		return model.Cart{}, err
	}
	return s.build(ctx, s.store, cartID)
}

func (s *CartService) build(ctx context.Context, r store.Repos, cartID string) (model.Cart, error) {
	ok, err := r.Carts().Exists(ctx, cartID)
	if err != nil {
		return model.Cart{}, dbError()
	}
	if !ok {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	lines, err := r.Carts().Lines(ctx, cartID)
	if err != nil {
		return model.Cart{}, dbError()
	}
	products, err := r.Products().FindByIDs(ctx, lineProductIDs(lines))
	if err != nil {
		return model.Cart{}, dbError()
	}

	cart := model.Cart{ID: cartID, Products: make([]model.CartLine, 0, len(lines))}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		cart.Products = append(cart.Products, model.CartLine{Product: p, Quantity: l.Quantity})
	}
	return cart, nil
}

// カートに追加（同一商品は数量加算）。在庫を超える数量は400
func (s *CartService) AddProduct(ctx context.Context, user model.User, cartID, productID string, qty int) error {
	if err := s.own(user, cartID); err != nil {
		return err
	}
	if qty < 1 {
		return NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	return s.withProduct(ctx, cartID, productID, func(r store.Repos, p model.Product, inCart int) error {
		if p.Stock <= 0 {
			return NewHTTPError(http.StatusBadRequest, "product out of stock")
		}
		if inCart+qty > p.Stock {
			return NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}
		return r.Carts().AddLine(ctx, cartID, productID, qty)
	})
}

// 数量を上書き。0以下なら行を削除
func (s *CartService) SetQuantity(ctx context.Context, user model.User, cartID, productID string, qty int) error {
	if err := s.own(user, cartID); err != nil {
		return err
	}
	if qty <= 0 {
		return s.RemoveProduct(ctx, user, cartID, productID)
	}

	return s.withProduct(ctx, cartID, productID, func(r store.Repos, p model.Product, _ int) error {
		if qty > p.Stock {
			return NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}
		return r.Carts().SetLine(ctx, cartID, productID, qty)
	})
}

// 公開中の商品と、カート内の現在の数量を渡してfnを実行
func (s *CartService) withProduct(ctx context.Context, cartID, productID string, fn func(r store.Repos, p model.Product, inCart int) error) error {
	err := s.store.WithinTx(ctx, func(r store.Repos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return err
		}
		if !p.Status {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}

		lines, err := r.Carts().Lines(ctx, cartID)
		if err != nil {
			return err
		}
		inCart := 0
		for _, l := range lines {
			if l.ProductID == productID {
				inCart = l.Quantity
			}
		}
		return fn(r, p, inCart)
	})
	return storeError(err, "cart not found")
}

func (s *CartService) RemoveProduct(ctx context.Context, user model.User, cartID, productID string) error {
	if err := s.own(user, cartID); err != nil {
		return err
	}
	if err := s.store.Carts().RemoveLine(ctx, cartID, productID); err != nil {
		return storeError(err, "product not in cart")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, user model.User, cartID string) error {
	if err := s.own(user, cartID); err != nil {
		return err
	}
	if err := s.store.Carts().Clear(ctx, cartID); err != nil {
		return storeError(err, "cart not found")
	}
	return nil
}

// 購入。在庫が足りる行だけ買い、足りない行はカートに残す。
// 1行も買えなければ400
func (s *CartService) Purchase(ctx context.Context, user model.User, cartID string) (model.PurchaseResult, error) {
	if err := s.own(user, cartID); err != nil {
		return model.PurchaseResult{}, err
	}

	var (
		result    model.PurchaseResult
		purchased []model.CartLine
	)
	err := s.store.WithinTx(ctx, func(r store.Repos) error {
		cart, err := s.build(ctx, r, cartID)
		if err != nil {
			return err
		}
		lines, err := r.Carts().Lines(ctx, cartID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		unavailable := []string{}
		amount := decimal.Zero
		for _, l := range lines {
			cl, ok := cart.Line(l.ProductID)
			if !ok || !cl.Product.Status {
				unavailable = append(unavailable, l.ProductID)
				continue
			}
			//在庫が足りるときだけ減らす
			ok, err := r.Products().DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				unavailable = append(unavailable, l.ProductID)
				continue
			}
			if err := r.Carts().RemoveLine(ctx, cartID, l.ProductID); err != nil {
				return err
			}
			purchased = append(purchased, cl)
			amount = amount.Add(cl.Subtotal())
		}
		if len(purchased) == 0 {
			return NewHTTPError(http.StatusBadRequest, "no products available")
		}

		ticket := model.Ticket{
			ID:               s.idGen.NewID(),
			Code:             ticketCode(),
			Amount:           amount.Round(2).InexactFloat64(),
			Purchaser:        user.Email,
			PurchaseDatetime: s.clock.Now(),
		}
		if err := r.Tickets().Create(ctx, &ticket); err != nil {
			return err
		}

		result = model.PurchaseResult{Ticket: &ticket, Unavailable: unavailable}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  user.ID,
			Action:       model.AuditActionPurchase,
			ResourceType: model.AuditResourceCart,
			ResourceID:   cartID,
			BeforeJSON:   toJSON(cart),
			AfterJSON:    toJSON(result),
			CreatedAt:    ticket.PurchaseDatetime,
		})
	})
	if err != nil {
		return model.PurchaseResult{}, storeError(err, "cart not found")
	}

	s.logger.Infof("purchase: ticket=%s amount=%.2f unavailable=%d", result.Ticket.Code, result.Ticket.Amount, len(result.Unavailable))

	//メールはtxの外。失敗しても購入は成功
	if s.mailer != nil {
		if err := s.mailer.SendPurchaseConfirmation(ctx, user, *result.Ticket, purchased); err != nil {
			s.logger.Warnf("purchase mail failed: ticket=%s err=%v", result.Ticket.Code, err)
		}
	}
	return result, nil
}

// Ticketsはログイン中ユーザーの購入履歴（新しい順）
func (s *CartService) Tickets(ctx context.Context, user model.User) ([]model.Ticket, error) {
	tickets, err := s.store.Tickets().ListByPurchaser(ctx, user.Email)
	if err != nil {
		return nil, dbError()
	}
	return tickets, nil
}

func lineProductIDs(lines []store.Line) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// 12桁の英数字（大文字）
func ticketCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/server/store"
	"storefront/internal/validator"

	"github.com/labstack/gommon/log"
)

const (
	// ?limit= の既定値と上限
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

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

type ProductService struct {
	store  store.Store
	idGen  IDGenerator
	clock  Clock
	logger *log.Logger
}

// DI
func NewProductService(s store.Store, idGen IDGenerator, clock Clock, logger *log.Logger) *ProductService {
	return &ProductService{store: s, idGen: idGen, clock: clock, logger: loggerOrDiscard(logger)}
}

// ログインユーザー向けカタログ（公開中のみ、登録順）
func (s *ProductService) ListActive(ctx context.Context, limit int) ([]model.Product, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, err := s.store.Products().List(ctx, limit, true)
	if err != nil {
		return nil, dbError()
	}
	return items, nil
}

// 非公開の商品は404
func (s *ProductService) GetActive(ctx context.Context, productID string) (model.Product, error) {
	p, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}
	if !p.Status {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	return p, nil
}

// 管理画面は非公開も含めて全件
func (s *ProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	items, err := s.store.Products().List(ctx, 0, false)
	if err != nil {
		return nil, dbError()
	}
	return items, nil
}

func (s *ProductService) Create(ctx context.Context, actorID string, in ProductInput) (model.Product, error) {
	in = normalize(in)
	if err := validator.ValidateProduct(in.Title, in.Code, in.Price, in.Stock); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := fromInput(s.idGen.NewID(), in)
	err := s.store.WithinTx(ctx, func(r store.Repos) error {
		if err := r.Products().Create(ctx, &p); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, s.audit(actorID, model.AuditActionCreateProduct, p.ID, nil, p))
	})
	if errors.Is(err, store.ErrConflict) {
		return model.Product{}, NewHTTPError(http.StatusConflict, "product code already exists")
	}
	if err != nil {
		return model.Product{}, dbError()
	}

	s.logger.Infof("product created: id=%s code=%s", p.ID, p.Code)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, actorID, productID string, in ProductInput) (model.Product, error) {
	in = normalize(in)
	if err := validator.ValidateProduct(in.Title, in.Code, in.Price, in.Stock); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var updated model.Product
	err := s.store.WithinTx(ctx, func(r store.Repos) error {
		//変更前（before）
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		p := fromInput(productID, in)
		if err := r.Products().Update(ctx, p); err != nil {
			return err
		}
		if updated, err = r.Products().FindByID(ctx, productID); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, s.audit(actorID, model.AuditActionUpdateProduct, productID, before, updated))
	})
	if errors.Is(err, store.ErrConflict) {
		return model.Product{}, NewHTTPError(http.StatusConflict, "product code already exists")
	}
	if err != nil {
		return model.Product{}, storeError(err, "product not found")
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, actorID, productID string) error {
	err := s.store.WithinTx(ctx, func(r store.Repos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := r.Products().Delete(ctx, productID); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, s.audit(actorID, model.AuditActionDeleteProduct, productID, before, nil))
	})
	if err != nil {
		return storeError(err, "product not found")
	}

	s.logger.Infof("product deleted: id=%s", productID)
	return nil
}

// 監査ログ（商品）。before/afterはJSON文字列
func (s *ProductService) audit(actorID string, action model.AuditAction, productID string, before, after interface{}) model.AuditLog {
	return model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    s.clock.Now(),
	}
}

func normalize(in ProductInput) ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Code = strings.TrimSpace(in.Code)
	in.Category = strings.TrimSpace(in.Category)
	in.Img = strings.TrimSpace(in.Img)
	return in
}

func fromInput(id string, in ProductInput) model.Product {
	return model.Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Img:         in.Img,
		Code:        in.Code,
		Stock:       in.Stock,
		Category:    in.Category,
		Status:      in.Status,
	}
}

// nilは空文字
func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

package usecase

import (
	"context"
	"io"
	"strings"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/export"
	"storefront/internal/notify"
	repo "storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/validator"

	"github.com/labstack/gommon/log"
	"golang.org/x/text/cases"
)

// AdminProductUsecaseは管理画面の商品CRUD。
// 変更に成功するたびにストアのカタログを無効化する
type AdminProductUsecase struct {
	products repo.ProductRepository
	store    *session.Store
	notifier notify.Notifier
	log      *log.Logger

	busy busy[AdminBusy]
}

// 管理画面の作成・削除の実行中フラグ
type AdminBusy struct {
	Creating bool
	Deleting bool
}

func creating(b *AdminBusy) *bool { return &b.Creating }
func deleting(b *AdminBusy) *bool { return &b.Deleting }

// DI
func NewAdminProductUsecase(products repo.ProductRepository, store *session.Store, notifier notify.Notifier, logger *log.Logger) *AdminProductUsecase {
	return &AdminProductUsecase{
		products: products,
		store:    store,
		notifier: notifier,
		log:      loggerOrDiscard(logger, "admin"),
	}
}

func (u *AdminProductUsecase) List(ctx context.Context) ([]model.Product, error) {
	products, err := u.products.ListAll(ctx)
	if err != nil {
		u.log.Warnf("list products: %v", err)
		return nil, err
	}
	return products, nil
}

// タイトル・カテゴリ・コードの部分一致（大文字小文字無視）
func SearchProducts(products []model.Product, query string) []model.Product {
	q := strings.TrimSpace(query)
	if q == "" {
		return products
	}
	fold := cases.Fold()
	q = fold.String(q)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Title), q) ||
			strings.Contains(fold.String(p.Category), q) ||
			strings.Contains(fold.String(p.Code), q) {
			out = append(out, p)
		}
	}
	return out
}

func (u *AdminProductUsecase) Create(ctx context.Context, in repo.ProductInput) (model.Product, error) {
	if !u.busy.begin(creating) {
		return model.Product{}, ErrBusy
	}
	defer u.busy.end(creating)

	in = normalizeProductInput(in)
	if err := validator.ValidateProduct(in.Title, in.Code, in.Price, in.Stock); err != nil {
		notify.Error(u.notifier, "Could not create product", err.Error())
		return model.Product{}, err
	}

	p, err := u.products.Create(ctx, in)
	if err != nil {
		u.log.Warnf("create product %s: %v", in.Code, err)
		notify.Error(u.notifier, "Could not create product", api.Message(err, "please try again"))
		return model.Product{}, err
	}

	u.store.InvalidateProducts()
	notify.Success(u.notifier, "Product created", p.Title)
	return p, nil
}

func (u *AdminProductUsecase) Update(ctx context.Context, id string, in repo.ProductInput) (model.Product, error) {
	in = normalizeProductInput(in)
	if err := validator.ValidateProduct(in.Title, in.Code, in.Price, in.Stock); err != nil {
		notify.Error(u.notifier, "Could not update product", err.Error())
		return model.Product{}, err
	}

	p, err := u.products.Update(ctx, id, in)
	if err != nil {
		u.log.Warnf("update product %s: %v", id, err)
		notify.Error(u.notifier, "Could not update product", api.Message(err, "please try again"))
		return model.Product{}, err
	}

	u.store.InvalidateProducts()
	notify.Success(u.notifier, "Product updated", p.Title)
	return p, nil
}

func (u *AdminProductUsecase) Delete(ctx context.Context, id string) error {
	if !u.busy.begin(deleting) {
		return ErrBusy
	}
	defer u.busy.end(deleting)

	if err := u.products.Delete(ctx, id); err != nil {
		u.log.Warnf("delete product %s: %v", id, err)
		notify.Error(u.notifier, "Could not delete product", api.Message(err, "please try again"))
		return err
	}

	u.store.InvalidateProducts()
	notify.Success(u.notifier, "Product deleted", "")
	return nil
}

func (u *AdminProductUsecase) Busy() AdminBusy {
	return u.busy.snapshot()
}

// 一覧をxlsxで書き出す
func (u *AdminProductUsecase) Export(ctx context.Context, w io.Writer) (int, error) {
	products, err := u.List(ctx)
	if err != nil {
		notify.Error(u.notifier, "Export failed", api.Message(err, "could not load products"))
		return 0, err
	}
	if err := export.WriteProducts(w, products); err != nil {
		notify.Error(u.notifier, "Export failed", err.Error())
		return 0, err
	}
	return len(products), nil
}

// 取り込み結果
type ImportResult struct {
	Created int
	Skipped int
	Failed  int
}

// Importはxlsxの各行を新規商品として作る。1行の失敗で止めない
func (u *AdminProductUsecase) Import(ctx context.Context, r io.ReaderAt, size int64) (ImportResult, error) {
	if !u.busy.begin(creating) {
		return ImportResult{}, ErrBusy
	}
	defer u.busy.end(creating)

	rows, skipped, err := export.ReadProducts(r, size)
	if err != nil {
		notify.Error(u.notifier, "Import failed", err.Error())
		return ImportResult{}, err
	}

	res := ImportResult{Skipped: skipped}
	for _, in := range rows {
		in = normalizeProductInput(in)
		if err := validator.ValidateProduct(in.Title, in.Code, in.Price, in.Stock); err != nil {
			res.Skipped++
			continue
		}
		if _, err := u.products.Create(ctx, in); err != nil {
			u.log.Warnf("import product %s: %v", in.Code, err)
			res.Failed++
			continue
		}
		res.Created++
	}

	if res.Created > 0 {
		u.store.InvalidateProducts()
	}
	notify.Info(u.notifier, "Import finished", "")
	return res, nil
}

func normalizeProductInput(in repo.ProductInput) repo.ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Code = strings.TrimSpace(in.Code)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

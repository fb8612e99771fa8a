package repository

import (
	"context"

	"storefront/internal/domain/model"
	"storefront/internal/server/store"

	"gorm.io/gorm"
)

// reposGormは1つの*gorm.DB（通常 or tx）に紐づくrepoの束
type reposGorm struct {
	users     *UserGormRepository
	products  *ProductGormRepository
	carts     *CartGormRepository
	tickets   *TicketGormRepository
	auditLogs *AuditLogGormRepository
}

func newReposGorm(db *gorm.DB) reposGorm {
	return reposGorm{
		users:     NewUserGormRepository(db),
		products:  NewProductGormRepository(db),
		carts:     NewCartGormRepository(db),
		tickets:   NewTicketGormRepository(db),
		auditLogs: NewAuditLogGormRepository(db),
	}
}

func (r reposGorm) Users() store.UserRepository         { return r.users }
func (r reposGorm) Products() store.ProductRepository   { return r.products }
func (r reposGorm) Carts() store.CartRepository         { return r.carts }
func (r reposGorm) Tickets() store.TicketRepository     { return r.tickets }
func (r reposGorm) AuditLogs() store.AuditLogRepository { return r.auditLogs }

// GormStoreはPostgres版のstore.Store
type GormStore struct {
	reposGorm
	db *gorm.DB
}

// DI
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{reposGorm: newReposGorm(db), db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(r store.Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(newReposGorm(tx))
	})
}

// テーブル作成
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Product{},
		&cartRow{},
		&cartLineRow{},
		&model.Ticket{},
		&model.AuditLog{},
	)
}

package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

type TicketGormRepository struct {
	db *gorm.DB
}

// DI
func NewTicketGormRepository(db *gorm.DB) *TicketGormRepository {
	return &TicketGormRepository{db: db}
}

func (r *TicketGormRepository) Create(ctx context.Context, t *model.Ticket) error {
	return mapErr(r.db.WithContext(ctx).Create(t).Error)
}

// 新しい順
func (r *TicketGormRepository) ListByPurchaser(ctx context.Context, email string) ([]model.Ticket, error) {
	tickets := []model.Ticket{}
	if err := r.db.WithContext(ctx).
		Where("purchaser = ?", email).
		Order("purchase_datetime desc").
		Find(&tickets).Error; err != nil {
		return []model.Ticket{}, err
	}
	return tickets, nil
}

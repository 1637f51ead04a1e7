package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tair/commerce-core/internal/order/domain"
	"github.com/tair/commerce-core/pkg/apperror"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Order{}, &domain.OrderItem{}, &domain.StatusEvent{})
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.DuplicateReference(order.Number)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order %d not found", id)
		}
		return nil, apperror.Internal(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uint, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

// UpdateStatus is a compare-and-swap on the status column. Two concurrent
// transitions of the same order serialize here: only the one that observes
// the expected from state wins.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, apperror.Internal(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormOrderRepository) UpdatePaymentStatus(ctx context.Context, id uint, from, to domain.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	if res.Error != nil {
		return false, apperror.Internal(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormOrderRepository) AppendStatusEvent(ctx context.Context, event *domain.StatusEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

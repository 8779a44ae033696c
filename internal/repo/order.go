package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/models"
)

type OrderFilter struct {
	BookedBy *uuid.UUID
	From     *time.Time
	To       *time.Time
	// ExcludeStatus drops orders in this status when set.
	ExcludeStatus string
}

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", itemsByPosition).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Preload("Items", itemsByPosition)
	if f.BookedBy != nil {
		q = q.Where("booked_by = ?", *f.BookedBy)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.ExcludeStatus != "" {
		q = q.Where("status <> ?", f.ExcludeStatus)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrderStatus writes next only if the stored status is still prev.
// ErrNoRows means another writer got there first.
func (r *GormRepo) SetOrderStatus(ctx context.Context, id uuid.UUID, prev, next string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, prev).
		Updates(map[string]any{"status": next, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

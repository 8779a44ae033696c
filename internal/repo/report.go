package repo

import (
	"context"

	"github.com/sandp/medstock/internal/models"
)

type Counts struct {
	ActiveProducts int64
	LowStock       int64
	Orders         int64
	SalesAmount    float64
}

func (r *GormRepo) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.DB.WithContext(ctx).
		Where("status = ? AND current_stock <= minimum_stock_alert", models.ProductActive).
		Order("current_stock ASC").
		Find(&out).Error
	return out, err
}

// StockedActiveProducts returns ACTIVE products that still have units on hand.
func (r *GormRepo) StockedActiveProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.DB.WithContext(ctx).
		Where("status = ? AND current_stock > 0", models.ProductActive).
		Find(&out).Error
	return out, err
}

func (r *GormRepo) ActiveShelfLives(ctx context.Context) ([]string, error) {
	var out []string
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("status = ?", models.ProductActive).
		Pluck("shelf_life", &out).Error
	return out, err
}

func (r *GormRepo) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Product{}).
		Where("status = ?", models.ProductActive).
		Count(&c.ActiveProducts).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Product{}).
		Where("status = ? AND current_stock <= minimum_stock_alert", models.ProductActive).
		Count(&c.LowStock).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Order{}).Count(&c.Orders).Error; err != nil {
		return c, err
	}
	var sum struct{ Total float64 }
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(net_amount), 0) AS total").
		Where("status <> ?", models.OrderCancelled).
		Scan(&sum).Error; err != nil {
		return c, err
	}
	c.SalesAmount = sum.Total
	return c, nil
}

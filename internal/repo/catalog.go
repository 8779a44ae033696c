package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandp/medstock/internal/models"
)

type ProductFilter struct {
	Category string
	Search   string
	// IDs, when non-nil, restricts the listing to these products.
	IDs    []uuid.UUID
	Offset int
	Limit  int
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("status = ?", models.ProductActive)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	} else if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, f.Limit)
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

// UpdateProductDetails writes every editable column of prod. The stock count
// is left alone; it only moves through the stock operations below.
func (r *GormRepo) UpdateProductDetails(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).
		Model(prod).
		Select("*").
		Omit("id", "current_stock", "created_by", "created_at").
		Updates(prod)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock removes qty units only if at least qty are on hand.
// ErrNoRows means the guard failed.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND current_stock >= ?", id, qty).
		UpdateColumn("current_stock", gorm.Expr("current_stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

func (r *GormRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetStock overwrites the on-hand count and returns the previous one. Call it
// inside InTx so the row stays locked until the movement is recorded.
func (r *GormRepo) SetStock(ctx context.Context, id uuid.UUID, stock int) (int, error) {
	var prev models.Product
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "current_stock").
		Where("id = ?", id).
		First(&prev).Error; err != nil {
		return 0, err
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("current_stock", stock).Error; err != nil {
		return 0, err
	}
	return prev.CurrentStock, nil
}

func (r *GormRepo) RecordMovement(ctx context.Context, m *models.StockMovement) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) ListMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	var out []models.StockMovement
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// NextSequence increments the named counter and returns its new value.
func (r *GormRepo) NextSequence(ctx context.Context, name string) (int64, error) {
	db := r.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Counter{Name: name}).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.Counter{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}
	var c models.Counter
	if err := db.Where("name = ?", name).First(&c).Error; err != nil {
		return 0, err
	}
	return c.Value, nil
}

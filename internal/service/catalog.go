package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/domain"
	"github.com/sandp/medstock/internal/events"
	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/internal/util"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
)

const searchHitLimit = 200

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  ProductIndex
	Cache  KPICache
}

type ProductQuery struct {
	Category string
	Search   string
	Page     int
	Size     int
}

func (s *CatalogService) GetProduct(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Product, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product", id)
	}
	return p, err
}

// ListProducts pages through ACTIVE products, newest first. When a search
// index is wired the term is resolved there and falls back to a name match
// if the index is unavailable.
func (s *CatalogService) ListProducts(ctx context.Context, sess session.Session, q ProductQuery) (*transport.ProductPage, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, q.Size)

	f := repo.ProductFilter{Category: q.Category, Search: q.Search, Offset: offset, Limit: limit}
	if term := strings.TrimSpace(q.Search); term != "" && s.Index != nil {
		ids, err := s.Index.SearchProductIDs(ctx, term, searchHitLimit)
		if err != nil {
			logging.FromContext(ctx).Warn("product_search_index_failed", "error", err)
		} else {
			f.IDs = ids
		}
	}

	total, items, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{
		Data: items,
		Meta: util.Meta(page, offset, limit, total),
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, sess session.Session, req transport.CreateProductRequest) (*models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	createdBy := sess.UserID
	p := &models.Product{
		Name:              strings.TrimSpace(req.Name),
		GenericName:       req.GenericName,
		Packaging:         req.Packaging,
		DosageForm:        req.DosageForm,
		Category:          req.Category,
		HSNCode:           req.HSNCode,
		Strength:          req.Strength,
		ManufacturerName:  req.ManufacturerName,
		Batch:             req.Batch,
		ScheduleType:      req.ScheduleType,
		StockUnit:         req.StockUnit,
		PTS:               req.PTS,
		PTR:               req.PTR,
		NetMRP:            req.NetMRP,
		MRP:               req.MRP,
		SellingRate:       req.SellingRate,
		GSTPercent:        domain.DefaultGSTPercent,
		DiscountPercent:   domain.DefaultDiscountPercent,
		FreeQuantity:      req.FreeQuantity,
		CurrentStock:      req.CurrentStock,
		MinimumStockAlert: req.MinimumStockAlert,
		ShelfLife:         req.ShelfLife,
		Status:            models.ProductActive,
		PhotoBase64:       req.PhotoBase64,
		CreatedBy:         &createdBy,
	}
	if req.GSTPercent != nil {
		p.GSTPercent = *req.GSTPercent
	}
	if req.DiscountPercent != nil {
		p.DiscountPercent = *req.DiscountPercent
	}
	applyPricing(p)

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	p.StockStatus = models.StockStatusOf(p.CurrentStock, p.MinimumStockAlert)

	s.afterWrite(ctx, events.ProductCreated, p, sess)
	return p, nil
}

// PatchProduct applies only the supplied fields and re-derives pricing.
// Setting status INACTIVE hides the product from listings and new orders.
func (s *CatalogService) PatchProduct(ctx context.Context, sess session.Session, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}

		setString(&p.Name, req.Name)
		setString(&p.GenericName, req.GenericName)
		setString(&p.Packaging, req.Packaging)
		setString(&p.DosageForm, req.DosageForm)
		setString(&p.Category, req.Category)
		setString(&p.HSNCode, req.HSNCode)
		setString(&p.Strength, req.Strength)
		setString(&p.ManufacturerName, req.ManufacturerName)
		setString(&p.Batch, req.Batch)
		setString(&p.ScheduleType, req.ScheduleType)
		setString(&p.StockUnit, req.StockUnit)
		setString(&p.ShelfLife, req.ShelfLife)
		setString(&p.Status, req.Status)
		setString(&p.PhotoBase64, req.PhotoBase64)
		setFloat(&p.PTS, req.PTS)
		setFloat(&p.PTR, req.PTR)
		setFloat(&p.NetMRP, req.NetMRP)
		setFloat(&p.MRP, req.MRP)
		setFloat(&p.SellingRate, req.SellingRate)
		setFloat(&p.GSTPercent, req.GSTPercent)
		setFloat(&p.DiscountPercent, req.DiscountPercent)
		setInt(&p.FreeQuantity, req.FreeQuantity)
		setInt(&p.MinimumStockAlert, req.MinimumStockAlert)
		applyPricing(p)

		if err := tx.UpdateProductDetails(ctx, p); err != nil {
			return err
		}
		if req.CurrentStock == nil {
			return nil
		}
		prev, err := tx.SetStock(ctx, id, *req.CurrentStock)
		if err != nil {
			return err
		}
		if delta := *req.CurrentStock - prev; delta != 0 {
			return tx.RecordMovement(ctx, &models.StockMovement{
				ProductID: id,
				Kind:      models.MovementAdjust,
				Delta:     delta,
			})
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.ProductUpdated, p, sess)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("product", id)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("product_unindex_failed", "product_id", id, "error", err)
		}
	}
	invalidate(ctx, s.Cache)
	publish(ctx, s.Events, events.TopicProducts, id.String(), map[string]any{
		"type":      events.ProductDeleted,
		"productId": id,
		"userId":    sess.UserID,
	})
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, kind string, p *models.Product, sess session.Session) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("product_index_failed", "product_id", p.ID, "error", err)
		}
	}
	invalidate(ctx, s.Cache)
	publish(ctx, s.Events, events.TopicProducts, p.ID.String(), map[string]any{
		"type":         kind,
		"productId":    p.ID,
		"name":         p.Name,
		"currentStock": p.CurrentStock,
		"userId":       sess.UserID,
	})
}

// applyPricing derives the stored pricing fields from netMrp.
func applyPricing(p *models.Product) {
	b := domain.Price(p.NetMRP, p.DiscountPercent, p.GSTPercent)
	p.TaxableValue = b.TaxableValue
	p.DiscountValue = b.DiscountValue
	p.TotalGSTAmount = b.TotalGST
	p.CGST = b.CGST
	p.SGST = b.SGST
}

func requireAdmin(sess session.Session) error {
	if !sess.Valid() {
		return ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

package service

import (
	"context"
	"sort"
	"time"

	"github.com/sandp/medstock/internal/domain"
	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
)

const DefaultExpiryDays = 30

type ReportService struct {
	Repo  *repo.GormRepo
	Cache KPICache
	Now   func() time.Time
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ExpiryReport lists stocked ACTIVE products whose shelf-life month ends
// within days from now, soonest first. Expired stock is included.
func (s *ReportService) ExpiryReport(ctx context.Context, sess session.Session, days int) (*transport.ExpiryReport, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultExpiryDays
	}

	products, err := s.Repo.StockedActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	window := time.Duration(days) * 24 * time.Hour
	out := make([]transport.ExpiringProduct, 0)
	for _, p := range products {
		end, soon := domain.ExpiresWithin(p.ShelfLife, now, window)
		if !soon {
			continue
		}
		out = append(out, transport.ExpiringProduct{Product: p, ExpiresAt: end, Expired: end.Before(now)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })

	return &transport.ExpiryReport{Days: days, Products: out}, nil
}

func (s *ReportService) LowStockReport(ctx context.Context, sess session.Session) (*transport.ProductsReport, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	products, err := s.Repo.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &transport.ProductsReport{Products: products}, nil
}

func (s *ReportService) SalesReport(ctx context.Context, sess session.Session, f transport.SalesFilter) (*transport.SalesReport, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{
		BookedBy:      f.UserID,
		From:          f.Start,
		To:            f.End,
		ExcludeStatus: models.OrderCancelled,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}

	rep := &transport.SalesReport{Orders: orders, TotalOrders: len(orders)}
	for _, o := range orders {
		rep.TotalSales += o.NetAmount
	}
	return rep, nil
}

// KPIs summarises the dashboard. Results are served from the cache when one is wired.
func (s *ReportService) KPIs(ctx context.Context, sess session.Session) (*transport.KPIs, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	var cached transport.KPIs
	if s.Cache != nil && s.Cache.Get(ctx, &cached) {
		return &cached, nil
	}

	c, err := s.Repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	shelfLives, err := s.Repo.ActiveShelfLives(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var expired int64
	for _, sl := range shelfLives {
		if domain.Expired(sl, now) {
			expired++
		}
	}

	k := &transport.KPIs{
		TotalProducts:    c.ActiveProducts,
		LowStockItems:    c.LowStock,
		ExpiredProducts:  expired,
		TotalOrders:      c.Orders,
		TotalSalesAmount: c.SalesAmount,
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, k); err != nil {
			logging.FromContext(ctx).Warn("kpi_cache_set_failed", "error", err)
		}
	}
	return k, nil
}

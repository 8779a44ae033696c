package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/domain"
	"github.com/sandp/medstock/internal/events"
	"github.com/sandp/medstock/internal/metrics"
	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/session"
)

const (
	orderSequence        = "order"
	DefaultInvoicePrefix = "SANDP"
)

type OrderService struct {
	Repo          *repo.GormRepo
	Events        events.Publisher
	Cache         KPICache
	InvoicePrefix string
	Seller        transport.Party
}

func (s *OrderService) prefix() string {
	if s.InvoicePrefix == "" {
		return DefaultInvoicePrefix
	}
	return s.InvoicePrefix
}

// CreateOrder prices every line against the catalog, decrements stock and
// persists the order in one transaction. Nothing is written if any line fails.
func (s *OrderService) CreateOrder(ctx context.Context, sess session.Session, req transport.CreateOrderRequest) (*transport.OrderSummary, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	if err := validateStruct(req); err != nil {
		metrics.OrderRejections.WithLabelValues("validation").Inc()
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		BookedBy:        sess.UserID,
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		CustomerAddress: req.CustomerAddress,
		CustomerEmail:   req.CustomerEmail,
		Pincode:         req.Pincode,
		GSTIN:           req.GSTIN,
		DoctorName:      req.DoctorName,
		Status:          models.OrderPlaced,
		Items:           make([]models.OrderItem, 0, len(req.Items)),
	}
	units := 0

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		for i, it := range req.Items {
			item, err := s.takeLine(ctx, tx, order.ID, i, it)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
			order.Subtotal += item.Amount
			order.TotalGST += item.CGST + item.SGST
			units += item.Quantity
		}

		seq, err := tx.NextSequence(ctx, orderSequence)
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		order.OrderNumber = fmt.Sprintf("ORD-%08d", seq)
		order.InvoiceNumber = s.prefix() + "/" + order.OrderNumber
		order.NetAmount = order.Subtotal + order.TotalGST

		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.OrderRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	metrics.UnitsSold.Add(float64(units))
	invalidate(ctx, s.Cache)
	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), map[string]any{
		"type":        events.OrderCreated,
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"bookedBy":    order.BookedBy,
		"netAmount":   order.NetAmount,
		"items":       len(order.Items),
	})

	return &transport.OrderSummary{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		NetAmount:   order.NetAmount,
	}, nil
}

// takeLine loads, checks, prices and reserves one requested line inside tx.
func (s *OrderService) takeLine(ctx context.Context, tx *repo.GormRepo, orderID uuid.UUID, pos int, it transport.OrderItemRequest) (*models.OrderItem, error) {
	id, err := uuid.Parse(it.ProductID)
	if err != nil {
		return nil, FieldErrors{fmt.Sprintf("items[%d].productId", pos): "must be a valid id"}
	}

	p, err := tx.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if p.Status != models.ProductActive {
		return nil, FieldErrors{fmt.Sprintf("items[%d].productId", pos): "product is not available"}
	}
	if it.Quantity > p.CurrentStock {
		return nil, &StockError{ProductID: p.ID, ProductName: p.Name, Available: p.CurrentStock, Requested: it.Quantity}
	}

	line := domain.PriceLine(it.Quantity, p.NetMRP, p.GSTPercent)

	if err := tx.DecrementStock(ctx, id, it.Quantity); err != nil {
		if !errors.Is(err, repo.ErrNoRows) {
			return nil, fmt.Errorf("decrement stock %s: %w", id, err)
		}
		available := 0
		if cur, gerr := tx.GetProduct(ctx, id); gerr == nil {
			available = cur.CurrentStock
		}
		return nil, &StockError{ProductID: p.ID, ProductName: p.Name, Available: available, Requested: it.Quantity}
	}

	if err := tx.RecordMovement(ctx, &models.StockMovement{
		ProductID: id,
		OrderID:   &orderID,
		Kind:      models.MovementOrder,
		Delta:     -it.Quantity,
	}); err != nil {
		return nil, fmt.Errorf("record movement %s: %w", id, err)
	}

	return &models.OrderItem{
		Position:     pos,
		ProductID:    p.ID,
		ProductName:  p.Name,
		HSNCode:      p.HSNCode,
		Batch:        p.Batch,
		Expiry:       p.ShelfLife,
		Quantity:     it.Quantity,
		FreeQuantity: p.FreeQuantity,
		MRP:          p.MRP,
		Rate:         p.NetMRP,
		GSTPercent:   p.GSTPercent,
		CGST:         line.CGST,
		SGST:         line.SGST,
		Amount:       line.Amount,
	}, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}

// UpdateStatus moves an order to status. Entering CANCELLED puts every line's
// quantity back on the shelf exactly once; CANCELLED orders cannot be reopened.
func (s *OrderService) UpdateStatus(ctx context.Context, sess session.Session, id uuid.UUID, status string) (*models.Order, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	if err := validateStruct(transport.UpdateStatusRequest{Status: status}); err != nil {
		return nil, err
	}

	var (
		out      *models.Order
		restored int
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("order", id)
		}
		if err != nil {
			return fmt.Errorf("load order %s: %w", id, err)
		}
		prev := o.Status
		if prev == status {
			out = o
			return nil
		}
		if prev == models.OrderCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrConflict, o.OrderNumber)
		}

		if status == models.OrderCancelled {
			for _, item := range o.Items {
				n, err := restoreLine(ctx, tx, o.ID, item)
				if err != nil {
					return err
				}
				restored += n
			}
		}

		if err := tx.SetOrderStatus(ctx, o.ID, prev, status); err != nil {
			if errors.Is(err, repo.ErrNoRows) {
				return fmt.Errorf("%w: order %s changed concurrently", ErrConflict, o.OrderNumber)
			}
			return fmt.Errorf("set order status: %w", err)
		}
		o.Status = status
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if restored > 0 {
		metrics.UnitsRestored.Add(float64(restored))
	}
	metrics.OrderStatusChanges.WithLabelValues(status).Inc()
	invalidate(ctx, s.Cache)
	publish(ctx, s.Events, events.TopicOrders, out.ID.String(), map[string]any{
		"type":        events.OrderStatusChanged,
		"orderId":     out.ID,
		"orderNumber": out.OrderNumber,
		"status":      out.Status,
		"changedBy":   sess.UserID,
	})
	return out, nil
}

// restoreLine returns an item's quantity to its product. A product that has
// since been hard-deleted has nowhere to go back to and is skipped.
func restoreLine(ctx context.Context, tx *repo.GormRepo, orderID uuid.UUID, item models.OrderItem) (int, error) {
	err := tx.IncrementStock(ctx, item.ProductID, item.Quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("restore stock %s: %w", item.ProductID, err)
	}
	if err := tx.RecordMovement(ctx, &models.StockMovement{
		ProductID: item.ProductID,
		OrderID:   &orderID,
		Kind:      models.MovementCancel,
		Delta:     item.Quantity,
	}); err != nil {
		return 0, fmt.Errorf("record movement %s: %w", item.ProductID, err)
	}
	return item.Quantity, nil
}

func canRead(sess session.Session, o *models.Order) bool {
	return sess.IsAdmin() || o.BookedBy == sess.UserID
}

func (s *OrderService) GetOrder(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Order, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	if !canRead(sess, o) {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return o, nil
}

// ListOrders returns the caller's own orders, or for admins every order
// optionally narrowed to one booking user.
func (s *OrderService) ListOrders(ctx context.Context, sess session.Session, userFilter *uuid.UUID) ([]models.Order, error) {
	if !sess.Valid() {
		return nil, ErrUnauthorized
	}
	f := repo.OrderFilter{}
	switch {
	case !sess.IsAdmin():
		if userFilter != nil && *userFilter != sess.UserID {
			return nil, fmt.Errorf("%w: user filter requires admin", ErrForbidden)
		}
		uid := sess.UserID
		f.BookedBy = &uid
	case userFilter != nil:
		f.BookedBy = userFilter
	}
	return s.Repo.ListOrders(ctx, f)
}

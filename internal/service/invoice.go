package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/session"
)

// Invoice assembles the printable tax invoice for an order. Access follows GetOrder.
func (s *OrderService) Invoice(ctx context.Context, sess session.Session, id uuid.UUID) (*transport.Invoice, error) {
	o, err := s.GetOrder(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	inv := &transport.Invoice{
		InvoiceNumber: o.InvoiceNumber,
		OrderNumber:   o.OrderNumber,
		Date:          o.CreatedAt,
		Status:        o.Status,
		Seller:        s.Seller,
		Buyer: transport.Party{
			Name:       o.CustomerName,
			Address:    o.CustomerAddress,
			Mobile:     o.CustomerMobile,
			Email:      o.CustomerEmail,
			Pincode:    o.Pincode,
			GSTIN:      o.GSTIN,
			DoctorName: o.DoctorName,
		},
		Lines:     make([]transport.InvoiceLine, 0, len(o.Items)),
		Subtotal:  o.Subtotal,
		TotalGST:  o.TotalGST,
		NetAmount: o.NetAmount,
	}
	for i, it := range o.Items {
		inv.Lines = append(inv.Lines, transport.InvoiceLine{
			SerialNo:     i + 1,
			ProductName:  it.ProductName,
			HSNCode:      it.HSNCode,
			Batch:        it.Batch,
			Expiry:       it.Expiry,
			Quantity:     it.Quantity,
			FreeQuantity: it.FreeQuantity,
			MRP:          it.MRP,
			Rate:         it.Rate,
			Amount:       it.Amount,
			GSTPercent:   it.GSTPercent,
			CGST:         it.CGST,
			SGST:         it.SGST,
			Total:        it.Amount + it.CGST + it.SGST,
		})
		inv.TotalCGST += it.CGST
		inv.TotalSGST += it.SGST
	}
	return inv, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderPlaced    = "PLACED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPlaced, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderNumber   string    `gorm:"uniqueIndex;not null"        json:"orderNumber"`
	InvoiceNumber string    `gorm:"not null"                    json:"invoiceNumber"`
	BookedBy      uuid.UUID `gorm:"type:uuid;index;not null"    json:"bookedBy"`

	CustomerName    string `gorm:"not null" json:"customerName"`
	CustomerMobile  string `gorm:"not null" json:"customerMobile"`
	CustomerAddress string `gorm:"not null" json:"customerAddress"`
	CustomerEmail   string `json:"customerEmail,omitempty"`
	Pincode         string `json:"pincode,omitempty"`
	GSTIN           string `gorm:"column:gstin" json:"gstin,omitempty"`
	DoctorName      string `json:"doctorName,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal  float64 `gorm:"not null" json:"subtotal"`
	TotalGST  float64 `gorm:"column:total_gst;not null" json:"totalGst"`
	NetAmount float64 `gorm:"not null" json:"netAmount"`
	Status    string  `gorm:"not null;default:PLACED;index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPlaced
	}
	return nil
}

// OrderItem is a priced snapshot of a product taken when the order was placed.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Position  int       `gorm:"not null"                 json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`

	ProductName string `json:"productName"`
	HSNCode     string `gorm:"column:hsn_code" json:"hsnCode,omitempty"`
	Batch       string `json:"batch,omitempty"`
	Expiry      string `json:"expiry,omitempty"`

	Quantity     int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	FreeQuantity int     `gorm:"default:0" json:"freeQuantity"`
	MRP          float64 `gorm:"column:mrp"  json:"mrp"`
	Rate         float64 `gorm:"not null"    json:"rate"`
	GSTPercent   float64 `gorm:"column:gst_percent" json:"gstPercent"`
	CGST         float64 `gorm:"column:cgst" json:"cgst"`
	SGST         float64 `gorm:"column:sgst" json:"sgst"`
	Amount       float64 `gorm:"not null"    json:"amount"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

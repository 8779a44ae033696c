package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProductActive   = "ACTIVE"
	ProductInactive = "INACTIVE"
)

const (
	StockInStock = "IN_STOCK"
	StockLow     = "LOW"
	StockOut     = "OUT"
)

type Product struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name             string `gorm:"not null;index"  json:"name"`
	GenericName      string `json:"genericName"`
	Packaging        string `json:"packaging"`
	DosageForm       string `gorm:"not null"        json:"dosageForm"`
	Category         string `gorm:"index"           json:"category"`
	HSNCode          string `gorm:"column:hsn_code;not null" json:"hsnCode"`
	Strength         string `json:"strength,omitempty"`
	ManufacturerName string `json:"manufacturerName,omitempty"`
	Batch            string `json:"batch,omitempty"`
	ScheduleType     string `gorm:"default:NON"     json:"scheduleType"`
	StockUnit        string `gorm:"default:Strip"   json:"stockUnit"`

	PTS             float64 `gorm:"column:pts"               json:"pts"`
	PTR             float64 `gorm:"column:ptr"               json:"ptr"`
	NetMRP          float64 `gorm:"column:net_mrp;not null"  json:"netMrp"`
	MRP             float64 `gorm:"column:mrp;not null"      json:"mrp"`
	SellingRate     float64 `json:"sellingRate"`
	GSTPercent      float64 `gorm:"column:gst_percent;not null" json:"gstPercent"`
	DiscountPercent float64 `gorm:"default:0"                json:"discountPercent"`

	TaxableValue   float64 `json:"taxableValue"`
	DiscountValue  float64 `json:"discountValue"`
	CGST           float64 `gorm:"column:cgst"  json:"cgst"`
	SGST           float64 `gorm:"column:sgst"  json:"sgst"`
	TotalGSTAmount float64 `gorm:"column:total_gst_amount" json:"totalGstAmount"`

	FreeQuantity      int    `gorm:"default:0"                        json:"freeQuantity"`
	CurrentStock      int    `gorm:"column:current_stock;not null;check:current_stock >= 0" json:"currentStock"`
	MinimumStockAlert int    `gorm:"column:minimum_stock_alert;default:0" json:"minimumStockAlert"`
	ShelfLife         string `gorm:"column:shelf_life;not null"       json:"shelfLife"`
	Status            string `gorm:"not null;default:ACTIVE;index"    json:"status"`
	PhotoBase64       string `json:"photoBase64,omitempty"`

	StockStatus string `gorm:"-" json:"stockStatus"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time  `gorm:"index"     json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.StockStatus = StockStatusOf(p.CurrentStock, p.MinimumStockAlert)
	return nil
}

func StockStatusOf(current, minimum int) string {
	switch {
	case current <= 0:
		return StockOut
	case current <= minimum:
		return StockLow
	default:
		return StockInStock
	}
}

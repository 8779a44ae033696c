package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/sandp/medstock/internal/models"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"gt=0"`
}

type CreateOrderRequest struct {
	CustomerName    string             `json:"customerName"    validate:"required"`
	CustomerMobile  string             `json:"customerMobile"  validate:"required,mobile"`
	CustomerAddress string             `json:"customerAddress" validate:"required,min=5"`
	CustomerEmail   string             `json:"customerEmail"   validate:"omitempty,email"`
	Pincode         string             `json:"pincode"         validate:"omitempty,len=6,numeric"`
	GSTIN           string             `json:"gstin"           validate:"omitempty,gstin"`
	DoctorName      string             `json:"doctorName"`
	Items           []OrderItemRequest `json:"items"           validate:"required,min=1,dive"`
}

type OrderSummary struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	NetAmount   float64   `json:"netAmount"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PLACED DELIVERED CANCELLED"`
}

type CreateProductRequest struct {
	Name              string   `json:"name"              validate:"required"`
	GenericName       string   `json:"genericName"`
	Packaging         string   `json:"packaging"`
	DosageForm        string   `json:"dosageForm"        validate:"required,oneof=Tablet Capsule Syrup Injection"`
	Category          string   `json:"category"`
	HSNCode           string   `json:"hsnCode"           validate:"required"`
	Strength          string   `json:"strength"`
	ManufacturerName  string   `json:"manufacturerName"`
	Batch             string   `json:"batch"`
	ScheduleType      string   `json:"scheduleType"      validate:"omitempty,oneof=NON H H1 X"`
	StockUnit         string   `json:"stockUnit"         validate:"omitempty,oneof=Strip Box Bottle"`
	PTS               float64  `json:"pts"               validate:"gte=0"`
	PTR               float64  `json:"ptr"               validate:"gt=0"`
	NetMRP            float64  `json:"netMrp"            validate:"gt=0"`
	MRP               float64  `json:"mrp"               validate:"gt=0"`
	SellingRate       float64  `json:"sellingRate"       validate:"gte=0"`
	GSTPercent        *float64 `json:"gstPercent"        validate:"omitempty,gstrate"`
	DiscountPercent   *float64 `json:"discountPercent"   validate:"omitempty,gte=0,lte=100"`
	FreeQuantity      int      `json:"freeQuantity"      validate:"gte=0"`
	CurrentStock      int      `json:"currentStock"      validate:"gte=0"`
	MinimumStockAlert int      `json:"minimumStockAlert" validate:"gte=0"`
	ShelfLife         string   `json:"shelfLife"         validate:"required,shelflife"`
	PhotoBase64       string   `json:"photoBase64"`
}

// PatchProductRequest carries only the fields being changed.
type PatchProductRequest struct {
	Name              *string  `json:"name"              validate:"omitempty,min=1"`
	GenericName       *string  `json:"genericName"`
	Packaging         *string  `json:"packaging"`
	DosageForm        *string  `json:"dosageForm"        validate:"omitempty,oneof=Tablet Capsule Syrup Injection"`
	Category          *string  `json:"category"`
	HSNCode           *string  `json:"hsnCode"           validate:"omitempty,min=1"`
	Strength          *string  `json:"strength"`
	ManufacturerName  *string  `json:"manufacturerName"`
	Batch             *string  `json:"batch"`
	ScheduleType      *string  `json:"scheduleType"      validate:"omitempty,oneof=NON H H1 X"`
	StockUnit         *string  `json:"stockUnit"         validate:"omitempty,oneof=Strip Box Bottle"`
	PTS               *float64 `json:"pts"               validate:"omitempty,gte=0"`
	PTR               *float64 `json:"ptr"               validate:"omitempty,gt=0"`
	NetMRP            *float64 `json:"netMrp"            validate:"omitempty,gt=0"`
	MRP               *float64 `json:"mrp"               validate:"omitempty,gt=0"`
	SellingRate       *float64 `json:"sellingRate"       validate:"omitempty,gte=0"`
	GSTPercent        *float64 `json:"gstPercent"        validate:"omitempty,gstrate"`
	DiscountPercent   *float64 `json:"discountPercent"   validate:"omitempty,gte=0,lte=100"`
	FreeQuantity      *int     `json:"freeQuantity"      validate:"omitempty,gte=0"`
	CurrentStock      *int     `json:"currentStock"      validate:"omitempty,gte=0"`
	MinimumStockAlert *int     `json:"minimumStockAlert" validate:"omitempty,gte=0"`
	ShelfLife         *string  `json:"shelfLife"         validate:"omitempty,shelflife"`
	Status            *string  `json:"status"            validate:"omitempty,oneof=ACTIVE INACTIVE"`
	PhotoBase64       *string  `json:"photoBase64"`
}

type ProductPage struct {
	Data []models.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,min=2"`
	Email    string `json:"email"    validate:"required,email"`
	Mobile   string `json:"mobile"   validate:"required,mobile"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN USER"`
	Status   string `json:"status"   validate:"omitempty,oneof=ACTIVE BLOCKED"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type CreatedUser struct {
	User models.User `json:"user"`
	// TemporaryPassword is set only when the server generated the password.
	TemporaryPassword string `json:"temporaryPassword,omitempty"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=2"`
	Mobile *string `json:"mobile" validate:"omitempty,mobile"`
	Status *string `json:"status" validate:"omitempty,oneof=ACTIVE BLOCKED"`
}

type ProductsReport struct {
	Products []models.Product `json:"products"`
}

type ExpiringProduct struct {
	models.Product
	ExpiresAt time.Time `json:"expiresAt"`
	Expired   bool      `json:"expired"`
}

type ExpiryReport struct {
	Days     int               `json:"days"`
	Products []ExpiringProduct `json:"products"`
}

type SalesFilter struct {
	Start  *time.Time
	End    *time.Time
	UserID *uuid.UUID
}

type SalesReport struct {
	Orders      []models.Order `json:"orders"`
	TotalSales  float64        `json:"totalSales"`
	TotalOrders int            `json:"totalOrders"`
}

type KPIs struct {
	TotalProducts    int64   `json:"totalProducts"`
	LowStockItems    int64   `json:"lowStockItems"`
	ExpiredProducts  int64   `json:"expiredProducts"`
	TotalOrders      int64   `json:"totalOrders"`
	TotalSalesAmount float64 `json:"totalSalesAmount"`
}

type Party struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Mobile      string `json:"mobile,omitempty"`
	Email       string `json:"email,omitempty"`
	Pincode     string `json:"pincode,omitempty"`
	GSTIN       string `json:"gstin,omitempty"`
	DrugLicense string `json:"drugLicense,omitempty"`
	DoctorName  string `json:"doctorName,omitempty"`
}

type InvoiceLine struct {
	SerialNo     int     `json:"serialNo"`
	ProductName  string  `json:"productName"`
	HSNCode      string  `json:"hsnCode"`
	Batch        string  `json:"batch"`
	Expiry       string  `json:"expiry"`
	Quantity     int     `json:"quantity"`
	FreeQuantity int     `json:"freeQuantity"`
	MRP          float64 `json:"mrp"`
	Rate         float64 `json:"rate"`
	Amount       float64 `json:"amount"`
	GSTPercent   float64 `json:"gstPercent"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	Total        float64 `json:"total"`
}

type Invoice struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	OrderNumber   string        `json:"orderNumber"`
	Date          time.Time     `json:"date"`
	Status        string        `json:"status"`
	Seller        Party         `json:"seller"`
	Buyer         Party         `json:"buyer"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	TotalCGST     float64       `json:"totalCgst"`
	TotalSGST     float64       `json:"totalSgst"`
	TotalGST      float64       `json:"totalGst"`
	NetAmount     float64       `json:"netAmount"`
}

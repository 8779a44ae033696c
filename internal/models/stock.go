package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MovementOrder  = "ORDER"
	MovementCancel = "CANCEL"
	MovementAdjust = "ADJUST"
)

// StockMovement records every stock change made outside a plain product edit.
type StockMovement struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	ProductID uuid.UUID  `gorm:"type:uuid;index;not null" json:"productId"`
	OrderID   *uuid.UUID `gorm:"type:uuid;index"          json:"orderId,omitempty"`
	Kind      string     `gorm:"not null"                 json:"kind"`
	Delta     int        `gorm:"not null"                 json:"delta"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Counter is a named monotonic sequence.
type Counter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderItem{}, &StockMovement{}, &Counter{}}
}

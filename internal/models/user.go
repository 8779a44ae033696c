package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sandp/medstock/pkg/session"
)

const (
	RoleAdmin = session.RoleAdmin
	RoleUser  = session.RoleUser
)

const (
	UserActive  = "ACTIVE"
	UserBlocked = "BLOCKED"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"  json:"id"`
	Name         string     `gorm:"not null"              json:"name"`
	Email        string     `gorm:"uniqueIndex;not null"  json:"email"`
	Mobile       string     `gorm:"not null"              json:"mobile"`
	PasswordHash string     `gorm:"not null"              json:"-"`
	Role         string     `gorm:"not null;default:USER" json:"role"`
	Status       string     `gorm:"not null;default:ACTIVE" json:"status"`
	PhotoBase64  string     `json:"photoBase64,omitempty"`
	CreatedBy    *uuid.UUID `gorm:"type:uuid"             json:"createdBy,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = UserActive
	}
	return nil
}

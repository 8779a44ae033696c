// Package testutil opens throwaway stores and seeds fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/pkg/db"
	"github.com/sandp/medstock/pkg/hash"
)

const Password = "Secret#123"

// InitTestDB returns a migrated in-memory SQLite store closed at test cleanup.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func SeedUser(t *testing.T, gdb *gorm.DB, email, role string) *models.User {
	t.Helper()
	h, err := hash.HashPassword(Password)
	require.NoError(t, err)
	u := &models.User{
		Name:         "User " + email,
		Email:        email,
		Mobile:       "9876543210",
		PasswordHash: h,
		Role:         role,
		Status:       models.UserActive,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// SeedProduct stores an ACTIVE product priced at netMrp with 5% GST.
func SeedProduct(t *testing.T, gdb *gorm.DB, name string, stock int, netMrp float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         name,
		DosageForm:   "Tablet",
		Category:     "General",
		HSNCode:      "3004",
		Batch:        "B-" + uuid.NewString()[:6],
		PTR:          netMrp * 0.8,
		NetMRP:       netMrp,
		MRP:          netMrp * 1.1,
		GSTPercent:   5,
		CurrentStock: stock,
		ShelfLife:    "12/2030",
		Status:       models.ProductActive,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Stock(t *testing.T, gdb *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, gdb.Where("id = ?", id).First(&p).Error)
	return p.CurrentStock
}

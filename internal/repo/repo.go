package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/models"
)

// ErrNoRows is returned by conditional writes whose WHERE clause matched nothing.
var ErrNoRows = errors.New("no rows affected")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

// InTx runs fn against a repo bound to a single transaction. Every store call
// made inside fn must go through the repo it receives.
func (r *GormRepo) InTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sandp/medstock/internal/events"
	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/pkg/logging"
)

// ProductIndex is the optional full-text mirror of the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SearchProductIDs(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

// KPICache is the optional short-lived store for dashboard aggregates.
type KPICache interface {
	Get(ctx context.Context, dest any) bool
	Set(ctx context.Context, value any) error
	Invalidate(ctx context.Context) error
}

const publishTimeout = 5 * time.Second

// publish sends an event after the store has committed. Failures are logged, never returned.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}

func invalidate(ctx context.Context, c KPICache) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("kpi_cache_invalidate_failed", "error", err)
	}
}

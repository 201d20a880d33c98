package query

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// GetAnalyticsHandler handles the dashboard analytics query
type GetAnalyticsHandler struct {
	repo domain.ProductRepository
}

// NewGetAnalyticsHandler creates a new analytics handler
func NewGetAnalyticsHandler(repo domain.ProductRepository) *GetAnalyticsHandler {
	return &GetAnalyticsHandler{repo: repo}
}

// Handle aggregates catalog totals for the admin dashboard.
func (h *GetAnalyticsHandler) Handle(ctx context.Context) (*domain.CatalogAnalytics, error) {
	analytics, err := h.repo.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute analytics: %w", err)
	}
	return analytics, nil
}

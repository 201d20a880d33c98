package query

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// GetProductHandler handles the single-product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle fetches one product by its identifier.
func (h *GetProductHandler) Handle(ctx context.Context, id uint) (*domain.Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("invalid product id")
	}
	product, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}
	return product, nil
}

package query

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// ListProductsHandler handles the paged catalog query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle normalizes the filter, runs the paged read and assembles the page
// envelope. A page past the end of the result set is not an error; it
// returns an empty slice with accurate metadata.
func (h *ListProductsHandler) Handle(ctx context.Context, f domain.Filter) (*domain.PageEnvelope, error) {
	f = f.Normalize()

	products, total, err := h.repo.FindPage(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	return &domain.PageEnvelope{
		Products:   products,
		Pagination: domain.NewPagination(total, f),
	}, nil
}

package query

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// ListOrdersHandler handles the order history query
type ListOrdersHandler struct {
	repo domain.ProductRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.ProductRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle returns every recorded order, newest first, with the ordered
// product preloaded.
func (h *ListOrdersHandler) Handle(ctx context.Context) ([]domain.Order, error) {
	orders, err := h.repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

package command

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// RecordOrderCommand represents a purchase-intent click on a product
type RecordOrderCommand struct {
	ProductID uint
}

// RecordOrderHandler handles order recording
type RecordOrderHandler struct {
	repo domain.ProductRepository
}

// NewRecordOrderHandler creates a new record order handler
func NewRecordOrderHandler(repo domain.ProductRepository) *RecordOrderHandler {
	return &RecordOrderHandler{repo: repo}
}

// Handle records an order against an existing product.
func (h *RecordOrderHandler) Handle(ctx context.Context, cmd RecordOrderCommand) (*domain.Order, error) {
	if _, err := h.repo.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, err
	}
	order := &domain.Order{ProductID: cmd.ProductID}
	if err := h.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	return order, nil
}

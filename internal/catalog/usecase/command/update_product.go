package command

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// UpdateProductCommand represents the command to update an existing product.
// The identifier and creation timestamp are immutable; everything else is
// replaced wholesale.
type UpdateProductCommand struct {
	ID          uint
	Name        string
	Description string
	Price       float64
	Category    string
	Rating      float64
	IsFeatured  bool
	Image       string
	Link        string
}

// UpdateProductHandler handles product updates
type UpdateProductHandler struct {
	repo domain.ProductRepository
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo}
}

// Handle validates the command and saves the product.
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	existing, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = cmd.Name
	existing.Description = cmd.Description
	existing.Price = cmd.Price
	existing.Category = cmd.Category
	existing.Rating = cmd.Rating
	existing.IsFeatured = cmd.IsFeatured
	existing.Image = cmd.Image
	existing.Link = cmd.Link

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := h.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return existing, nil
}

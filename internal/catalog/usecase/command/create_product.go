package command

import (
	"context"
	"fmt"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Rating      float64
	IsFeatured  bool
	Image       string
	Link        string
}

// CreateProductHandler handles product creation
type CreateProductHandler struct {
	repo domain.ProductRepository
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository) *CreateProductHandler {
	return &CreateProductHandler{repo: repo}
}

// Handle validates the command and inserts the product.
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	product := &domain.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Category:    cmd.Category,
		Rating:      cmd.Rating,
		IsFeatured:  cmd.IsFeatured,
		Image:       cmd.Image,
		Link:        cmd.Link,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := h.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

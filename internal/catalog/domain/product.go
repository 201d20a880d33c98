package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Product categories form a closed set; anything else is rejected on write
// and normalized away on read filters.
const (
	CategoryFertilizers = "Fertilizers"
	CategoryTools       = "Tools"
	CategorySeeds       = "Seeds"
	CategoryPesticides  = "Pesticides"
	CategoryEquipment   = "Equipment"
)

// CategoryAll is the read-side sentinel meaning "no category filter".
const CategoryAll = "all"

// Categories lists every valid product category.
var Categories = []string{
	CategoryFertilizers,
	CategoryTools,
	CategorySeeds,
	CategoryPesticides,
	CategoryEquipment,
}

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid category")
)

// Product represents a catalog item
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null;index"`
	Description string         `json:"description"`
	Price       float64        `json:"price" gorm:"not null;index"`
	Category    string         `json:"category" gorm:"index"`
	Rating      float64        `json:"rating" gorm:"default:0;index"`
	IsFeatured  bool           `json:"isFeatured" gorm:"default:false;index"`
	Image       string         `json:"image"`
	Link        string         `json:"link"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// ValidCategory reports whether c is a member of the category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Validate checks the entity invariants: non-empty name, non-negative price,
// rating within [0,5] and a known category.
func (p *Product) Validate() error {
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if p.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if p.Rating < 0 || p.Rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}
	if !ValidCategory(p.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// ProductRepository defines the contract for catalog data access. Every
// method takes the request context so cancellation and trace propagation
// reach the database layer.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	// FindPage returns one page of products matching the filter plus the
	// total number of matches. The filter must already be normalized.
	FindPage(ctx context.Context, filter Filter) ([]Product, int64, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)

	// Orders
	CreateOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context) ([]Order, error)

	// Analytics aggregates for the dashboard.
	Analytics(ctx context.Context) (*CatalogAnalytics, error)
}

// CatalogAnalytics summarizes the catalog for the admin dashboard.
type CatalogAnalytics struct {
	TotalProducts    int64            `json:"totalProducts"`
	FeaturedProducts int64            `json:"featuredProducts"`
	AverageRating    float64          `json:"averageRating"`
	AveragePrice     float64          `json:"averagePrice"`
	ByCategory       map[string]int64 `json:"byCategory"`
	TotalOrders      int64            `json:"totalOrders"`
}

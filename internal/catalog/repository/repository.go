package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/croptivize/catalog/internal/catalog/domain"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.Order{})
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindPage runs the same predicate twice: once to count every match and once
// to fetch the requested slice. The two reads are not transactional; a write
// landing between them can skew totalDocs by one, which callers accept.
func (r *GormProductRepository) FindPage(ctx context.Context, f domain.Filter) ([]domain.Product, int64, error) {
	var total int64
	if err := r.matching(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []domain.Product
	err := r.matching(ctx, f).
		Order(orderClause(f.Sort)).
		Limit(f.Limit).
		Offset(f.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// matching builds the conjunctive predicate for a normalized filter. Every
// condition is a parameterized AND term; there is no OR mode.
func (r *GormProductRepository) matching(ctx context.Context, f domain.Filter) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&domain.Product{})

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if f.Category != "" && f.Category != domain.CategoryAll {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinRating > 0 {
		tx = tx.Where("rating >= ?", f.MinRating)
	}
	if f.Featured {
		tx = tx.Where("is_featured = ?", true)
	}
	return tx
}

// orderClause maps a sort option to its ordering key. Every ordering carries
// the id tiebreak so pagination stays deterministic under equal keys.
func orderClause(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return "price ASC, id ASC"
	case domain.SortPriceDesc:
		return "price DESC, id ASC"
	case domain.SortRatingDesc:
		return "rating DESC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormProductRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormProductRepository) Analytics(ctx context.Context) (*domain.CatalogAnalytics, error) {
	a := &domain.CatalogAnalytics{ByCategory: make(map[string]int64)}
	db := r.db.WithContext(ctx)

	if err := db.Model(&domain.Product{}).Count(&a.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Product{}).
		Where("is_featured = ?", true).
		Count(&a.FeaturedProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Order{}).Count(&a.TotalOrders).Error; err != nil {
		return nil, err
	}

	if a.TotalProducts > 0 {
		row := db.Model(&domain.Product{}).
			Select("AVG(rating), AVG(price)").
			Row()
		if err := row.Scan(&a.AverageRating, &a.AveragePrice); err != nil {
			return nil, err
		}
	}

	type categoryCount struct {
		Category string
		Total    int64
	}
	var counts []categoryCount
	err := db.Model(&domain.Product{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		a.ByCategory[c.Category] = c.Total
	}

	return a, nil
}

package repositories

import (
	"context"

	"vastraa/internal/models"
)

// ProductFilter narrows a catalog query. Zero values mean no filter.
type ProductFilter struct {
	CategorySlug string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, image *models.ProductImage) error
	CountByCategory(ctx context.Context) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

package services

import (
	"cmp"
	"context"
	"slices"

	"vastraa/internal/apperrors"
	"vastraa/internal/cache"
	"vastraa/internal/models"
	"vastraa/internal/repositories"

	"go.uber.org/zap"
)

// Catalog sort orders.
const (
	SortPopular   = "popular"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// ListQuery selects and orders catalog products. Empty fields mean no filter and the default order.
type ListQuery struct {
	CategorySlug string
	Fabric       string
	Sort         string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo  repositories.ProductRepository
	cache *cache.Cache
	log   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, c *cache.Cache, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: c,
		log:   log,
	}
}

// List returns the catalog for q. The category filter runs in the store; the fabric filter
// and sort run on the fetched rows.
func (s *ProductService) List(ctx context.Context, q ListQuery) ([]models.Product, error) {
	if !knownSort(q.Sort) {
		return nil, apperrors.Validation("unknown sort %q", q.Sort)
	}

	products, err := cache.Fetch(ctx, s.cache, productsKey(q.CategorySlug), func(ctx context.Context) ([]models.Product, error) {
		rows, err := s.repo.List(ctx, repositories.ProductFilter{CategorySlug: q.CategorySlug})
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Resolve()
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.Fabric == "" || p.Fabric == q.Fabric {
			out = append(out, p)
		}
	}
	sortProducts(out, q.Sort)
	return out, nil
}

// Get retrieves a single product by its ID.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return cache.Fetch(ctx, s.cache, productKey(id), func(ctx context.Context) (*models.Product, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		p.Resolve()
		return p, nil
	})
}

func knownSort(sort string) bool {
	switch sort {
	case "", SortPopular, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return true
	}
	return false
}

// sortProducts orders products in place. Rows arrive oldest first, so newest is their reverse.
// Every order is stable.
func sortProducts(products []models.Product, sort string) {
	switch sort {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b models.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortRating:
		slices.SortStableFunc(products, func(a, b models.Product) int { return cmp.Compare(b.Rating, a.Rating) })
	case SortNewest:
		slices.Reverse(products)
	}
}

// CategoryService serves the category list shown in the storefront navigation.
type CategoryService struct {
	repo  repositories.CategoryRepository
	cache *cache.Cache
}

func NewCategoryService(repo repositories.CategoryRepository, c *cache.Cache) *CategoryService {
	return &CategoryService{repo: repo, cache: c}
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return cache.Fetch(ctx, s.cache, categoriesKey, s.repo.List)
}

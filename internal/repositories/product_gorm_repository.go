package repositories

import (
	"context"

	"vastraa/internal/apperrors"
	"vastraa/internal/models"

	"gorm.io/gorm"
)

// productColumns are the columns an update may change.
var productColumns = []string{
	"name", "description", "price", "original_price", "stock_quantity", "category_id", "fabric", "rating",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// List returns products with their category and images in creation order.
// The category filter is applied in the query itself.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", withImages)
	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}

	var products []models.Product
	if err := q.Order("products.created_at ASC").Order("products.id ASC").Find(&products).Error; err != nil {
		return nil, apperrors.Remote("failed to list products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", withImages).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, apperrors.NotFound("product with ID %s not found", id), "failed to get product")
	}
	return &product, nil
}

// Create creates a new product together with any images attached to it.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return apperrors.Remote("failed to create product", err)
	}
	return nil
}

// Update overwrites the editable columns, including zero values.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select(productColumns).
		Updates(product)
	if res.Error != nil {
		return apperrors.Remote("failed to update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete removes a product with its images and any cart or wishlist rows pointing at it.
// Products referenced by past orders cannot be deleted; the store rejects it.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&models.ProductImage{}, &models.CartItem{}, &models.WishlistItem{}} {
			if err := tx.Where("product_id = ?", id).Delete(dependent).Error; err != nil {
				return apperrors.Remote("failed to delete product dependents", err)
			}
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return apperrors.Remote("failed to delete product", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("product with ID %s not found for deletion", id)
		}
		return nil
	})
}

// AddImage attaches an image. A new primary image demotes the previous one.
func (r *GORMProductRepository) AddImage(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", image.ProductID).Count(&n).Error; err != nil {
			return apperrors.Remote("failed to look up product", err)
		}
		if n == 0 {
			return apperrors.NotFound("product with ID %s not found", image.ProductID)
		}
		if image.IsPrimary {
			err := tx.Model(&models.ProductImage{}).
				Where("product_id = ? AND is_primary = ?", image.ProductID, true).
				Update("is_primary", false).Error
			if err != nil {
				return apperrors.Remote("failed to demote primary image", err)
			}
		}
		if err := tx.Create(image).Error; err != nil {
			return apperrors.Remote("failed to add product image", err)
		}
		return nil
	})
}

// CountByCategory returns the number of products per category ID.
func (r *GORMProductRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		CategoryID string
		Count      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Remote("failed to count products per category", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

// Count returns the number of products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, apperrors.Remote("failed to count products", err)
	}
	return n, nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// List returns all categories ordered by name.
func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Remote("failed to list categories", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, classify(err, apperrors.NotFound("category with ID %s not found", id), "failed to get category")
	}
	return &category, nil
}

func (r *GORMCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, classify(err, apperrors.NotFound("category %q not found", slug), "failed to get category")
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return apperrors.Remote("failed to create category", err)
	}
	return nil
}

func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Select("name", "slug", "description").
		Updates(category)
	if res.Error != nil {
		return apperrors.Remote("failed to update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("category with ID %s not found for update", category.ID)
	}
	return nil
}

// Delete removes a category; its products become uncategorized in the same transaction.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", gorm.Expr("NULL")).Error
		if err != nil {
			return apperrors.Remote("failed to uncategorize products", err)
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return apperrors.Remote("failed to delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("category with ID %s not found for deletion", id)
		}
		return nil
	})
}

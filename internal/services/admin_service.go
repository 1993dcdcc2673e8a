package services

import (
	"cmp"
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"vastraa/internal/apperrors"
	"vastraa/internal/cache"
	"vastraa/internal/export"
	"vastraa/internal/models"
	"vastraa/internal/repositories"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// CategoryInput is the editable part of a category. The slug is derived from the name.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// ImageInput attaches a picture to a product.
type ImageInput struct {
	URL       string `json:"url" validate:"required,url"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name          string       `json:"name" validate:"required,min=3,max=200"`
	Description   string       `json:"description" validate:"omitempty,max=2000"`
	Price         float64      `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64     `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity *int         `json:"stock_quantity" validate:"required,gte=0"`
	CategoryID    *string      `json:"category_id,omitempty"`
	Fabric        string       `json:"fabric" validate:"omitempty,max=50"`
	Rating        float64      `json:"rating" validate:"gte=0,lte=5"`
	Images        []ImageInput `json:"images,omitempty" validate:"omitempty,dive"`
}

// CategoryWithCount is a category as listed in the back-office.
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

// UserSummary aggregates one customer's orders.
type UserSummary struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	TotalOrders int       `json:"total_orders"`
	TotalSpent  float64   `json:"total_spent"`
	LastOrderAt time.Time `json:"last_order_at"`
}

// Dashboard holds the headline numbers of the back-office.
type Dashboard struct {
	Products   int64   `json:"products"`
	Categories int     `json:"categories"`
	Orders     int64   `json:"orders"`
	Users      int64   `json:"users"`
	Revenue    float64 `json:"revenue"`
}

// AdminService handles catalog management and reporting for the back-office.
type AdminService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	orders     repositories.OrderRepository
	addresses  repositories.AddressRepository
	users      repositories.UserRepository
	cache      *cache.Cache
	log        *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	products repositories.ProductRepository,
	categories repositories.CategoryRepository,
	orders repositories.OrderRepository,
	addresses repositories.AddressRepository,
	users repositories.UserRepository,
	c *cache.Cache,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		products:   products,
		categories: categories,
		orders:     orders,
		addresses:  addresses,
		users:      users,
		cache:      c,
		log:        log,
	}
}

// ListCategories returns every category with the number of products in it.
func (s *AdminService) ListCategories(ctx context.Context) ([]CategoryWithCount, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryWithCount{Category: c, ProductCount: counts[c.ID]})
	}
	return out, nil
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	category := &models.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.assignSlug(ctx, category); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	s.log.Info("category created", zap.String("category_id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(in.Name)
	category.Description = in.Description
	if err := s.assignSlug(ctx, category); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return category, nil
}

// DeleteCategory removes a category. Its products stay in the catalog, uncategorized.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	s.cache.InvalidatePrefix(ctx, productKey(""))
	s.log.Info("category deleted", zap.String("category_id", id))
	return nil
}

// assignSlug derives the slug from the name and rejects one already used by another category.
func (s *AdminService) assignSlug(ctx context.Context, category *models.Category) error {
	category.Slug = slug.Make(category.Name)
	if category.Slug == "" {
		return apperrors.Validation("category name must contain letters or digits")
	}
	existing, err := s.categories.GetBySlug(ctx, category.Slug)
	if err == nil && existing.ID != category.ID {
		return apperrors.Conflict("category with slug %q already exists", category.Slug)
	}
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return err
	}
	return nil
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := s.checkProduct(ctx, &in); err != nil {
		return nil, err
	}
	product := &models.Product{}
	applyProductInput(product, in)
	for i, img := range in.Images {
		product.Images = append(product.Images, models.ProductImage{
			URL:       img.URL,
			IsPrimary: img.IsPrimary && !hasPrimaryBefore(in.Images, i),
		})
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	product.Resolve()
	s.log.Info("product created", zap.String("product_id", product.ID))
	return product, nil
}

// UpdateProduct overwrites the product's editable fields. Images are managed with AddProductImage.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := s.checkProduct(ctx, &in); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductInput(product, in)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	product.Resolve()
	return product, nil
}

// DeleteProduct removes a product along with cart and wishlist rows that point at it.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

// AddProductImage attaches an image. A primary image replaces the previous primary.
func (s *AdminService) AddProductImage(ctx context.Context, productID string, in ImageInput) (*models.ProductImage, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	image := &models.ProductImage{ProductID: productID, URL: in.URL, IsPrimary: in.IsPrimary}
	if err := s.products.AddImage(ctx, image); err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, productID)
	return image, nil
}

// ExportProducts writes the whole catalog as an xlsx workbook.
func (s *AdminService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.products.List(ctx, repositories.ProductFilter{})
	if err != nil {
		return err
	}
	for i := range products {
		products[i].Resolve()
	}
	return export.Products(w, products)
}

// UsersSummary aggregates orders per customer, most recent buyer first. The display name and
// phone come from the customer's first saved address.
func (s *AdminService) UsersSummary(ctx context.Context) ([]UserSummary, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	addresses, err := s.addresses.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*UserSummary)
	for _, o := range orders {
		sum, ok := byUser[o.UserID]
		if !ok {
			sum = &UserSummary{UserID: o.UserID}
			byUser[o.UserID] = sum
		}
		sum.TotalOrders++
		sum.TotalSpent += o.TotalPrice
		if o.CreatedAt.After(sum.LastOrderAt) {
			sum.LastOrderAt = o.CreatedAt
		}
	}
	for _, a := range addresses {
		if sum, ok := byUser[a.UserID]; ok && sum.Name == "" {
			sum.Name = a.FullName
			sum.Phone = a.Phone
		}
	}

	out := make([]UserSummary, 0, len(byUser))
	for _, sum := range byUser {
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b UserSummary) int {
		if c := b.LastOrderAt.Compare(a.LastOrderAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out, nil
}

// Dashboard returns catalog and sales totals.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Products, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	d.Categories = len(categories)
	if d.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if d.Users, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if d.Revenue, err = s.orders.Revenue(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *AdminService) checkProduct(ctx context.Context, in *ProductInput) error {
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	if err := validateInput(in); err != nil {
		return err
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if apperrors.Is(err, apperrors.KindNotFound) {
				return apperrors.Validation("category %s does not exist", *in.CategoryID)
			}
			return err
		}
	}
	return nil
}

func applyProductInput(p *models.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.OriginalPrice = in.OriginalPrice
	p.StockQuantity = *in.StockQuantity
	p.CategoryID = in.CategoryID
	p.Fabric = in.Fabric
	p.Rating = in.Rating
	p.Category = nil
}

func hasPrimaryBefore(images []ImageInput, i int) bool {
	for _, img := range images[:i] {
		if img.IsPrimary {
			return true
		}
	}
	return false
}

func (s *AdminService) invalidateCatalog(ctx context.Context) {
	s.cache.Invalidate(ctx, categoriesKey)
	s.cache.InvalidatePrefix(ctx, productsPrefix)
}

// invalidateProduct drops every entry that may embed the product: carts, wishlists and
// order history join the live product row.
func (s *AdminService) invalidateProduct(ctx context.Context, id string) {
	s.cache.Invalidate(ctx, productKey(id))
	s.cache.InvalidatePrefix(ctx, productsPrefix)
	s.cache.InvalidatePrefix(ctx, cartKey(""))
	s.cache.InvalidatePrefix(ctx, wishlistKey(""))
	s.cache.InvalidatePrefix(ctx, ordersKey(""))
	s.cache.InvalidatePrefix(ctx, orderKey(""))
}

// Command seed loads a starter catalog and the admin account. Running it twice is safe:
// categories and products that already exist are left untouched.
package main

import (
	"context"
	"log"

	"vastraa/internal/app"
	"vastraa/internal/config"
	"vastraa/internal/database"
	"vastraa/internal/logger"
	"vastraa/internal/services"

	"go.uber.org/zap"
)

type seedProduct struct {
	category string
	input    services.ProductInput
}

func ptr[T any](v T) *T { return &v }

var seedCategories = []services.CategoryInput{
	{Name: "Sarees", Description: "Handwoven sarees from across India"},
	{Name: "Kurtas", Description: "Everyday and festive kurtas"},
	{Name: "Dupattas", Description: "Stoles and dupattas"},
}

var seedProducts = []seedProduct{
	{"sarees", services.ProductInput{
		Name: "Banarasi Silk Saree", Description: "Zari woven silk saree with a rich pallu",
		Price: 4999, OriginalPrice: ptr(6499.0), StockQuantity: ptr(12), Fabric: "Silk", Rating: 4.8,
		Images: []services.ImageInput{{URL: "https://images.vastraa.example/banarasi-silk.jpg", IsPrimary: true}},
	}},
	{"sarees", services.ProductInput{
		Name: "Chanderi Cotton Saree", Description: "Lightweight cotton saree for summer",
		Price: 1899, StockQuantity: ptr(20), Fabric: "Cotton", Rating: 4.4,
		Images: []services.ImageInput{{URL: "https://images.vastraa.example/chanderi-cotton.jpg", IsPrimary: true}},
	}},
	{"kurtas", services.ProductInput{
		Name: "Block Print Kurta", Description: "Jaipuri block printed cotton kurta",
		Price: 899, OriginalPrice: ptr(1199.0), StockQuantity: ptr(35), Fabric: "Cotton", Rating: 4.3,
		Images: []services.ImageInput{{URL: "https://images.vastraa.example/block-print-kurta.jpg", IsPrimary: true}},
	}},
	{"kurtas", services.ProductInput{
		Name: "Linen Straight Kurta", Description: "Relaxed fit linen kurta",
		Price: 1499, StockQuantity: ptr(18), Fabric: "Linen", Rating: 4.1,
		Images: []services.ImageInput{{URL: "https://images.vastraa.example/linen-kurta.jpg", IsPrimary: true}},
	}},
	{"dupattas", services.ProductInput{
		Name: "Phulkari Dupatta", Description: "Hand embroidered phulkari dupatta",
		Price: 1299, StockQuantity: ptr(15), Fabric: "Georgette", Rating: 4.6,
		Images: []services.ImageInput{{URL: "https://images.vastraa.example/phulkari.jpg", IsPrimary: true}},
	}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := seed(context.Background(), cfg, zlog); err != nil {
		zlog.Fatal("seeding failed", zap.Error(err))
	}
	zlog.Info("seeding complete")
}

func seed(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	svc := app.NewServices(db, app.Options{
		Sender: services.LogOTPSender{Log: log},
		Auth:   services.AuthConfig{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL},
	}, log)

	categoryIDs, err := seedCatalogCategories(ctx, svc, log)
	if err != nil {
		return err
	}
	if err := seedCatalogProducts(ctx, svc, categoryIDs, log); err != nil {
		return err
	}

	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}
	admin, err := svc.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	log.Info("admin account ready", zap.String("email", admin.Email))
	return nil
}

// seedCatalogCategories creates missing categories and returns every category ID by slug.
func seedCatalogCategories(ctx context.Context, svc app.Services, log *zap.Logger) (map[string]string, error) {
	existing, err := svc.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(existing))
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		ids[c.Slug] = c.ID
		names[c.Name] = true
	}

	for _, in := range seedCategories {
		if names[in.Name] {
			continue
		}
		category, err := svc.Admin.CreateCategory(ctx, in)
		if err != nil {
			return nil, err
		}
		ids[category.Slug] = category.ID
		log.Info("seeded category", zap.String("slug", category.Slug))
	}
	return ids, nil
}

func seedCatalogProducts(ctx context.Context, svc app.Services, categoryIDs map[string]string, log *zap.Logger) error {
	existing, err := svc.Products.List(ctx, services.ListQuery{})
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Name] = true
	}

	created := 0
	for _, sp := range seedProducts {
		if seen[sp.input.Name] {
			continue
		}
		in := sp.input
		if id, ok := categoryIDs[sp.category]; ok {
			in.CategoryID = ptr(id)
		}
		if _, err := svc.Admin.CreateProduct(ctx, in); err != nil {
			return err
		}
		created++
	}
	log.Info("seeded products", zap.Int("created", created), zap.Int("existing", len(existing)))
	return nil
}

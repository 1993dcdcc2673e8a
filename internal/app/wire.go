package app

import (
	"vastraa/internal/cache"
	"vastraa/internal/repositories"
	"vastraa/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures NewServices. Events may be nil to disable publishing.
type Options struct {
	Cache  *cache.Cache
	Events services.EventPublisher
	Sender services.OTPSender
	Auth   services.AuthConfig
}

// NewServices builds the GORM repositories for db and the services on top of them.
func NewServices(db *gorm.DB, opts Options, log *zap.Logger) Services {
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	otpRepo := repositories.NewGORMOTPRepository(db)

	var revoked cache.Store
	if opts.Cache != nil {
		revoked = opts.Cache.Store()
	}

	return Services{
		Auth:       services.NewAuthService(userRepo, otpRepo, revoked, opts.Sender, opts.Auth, log.Named("auth")),
		Products:   services.NewProductService(productRepo, opts.Cache, log.Named("products")),
		Categories: services.NewCategoryService(categoryRepo, opts.Cache),
		Carts:      services.NewCartService(cartRepo, productRepo, opts.Cache, log.Named("cart")),
		Wishlist:   services.NewWishlistService(wishlistRepo, productRepo, opts.Cache, log.Named("wishlist")),
		Orders:     services.NewOrderService(orderRepo, opts.Cache, opts.Events, log.Named("orders")),
		Admin: services.NewAdminService(productRepo, categoryRepo, orderRepo, addressRepo, userRepo,
			opts.Cache, log.Named("admin")),
	}
}

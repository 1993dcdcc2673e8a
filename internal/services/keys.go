package services

import "vastraa/internal/cache"

const (
	categoriesKey  = "categories"
	productsPrefix = "products"
)

func productsKey(categorySlug string) string {
	if categorySlug == "" {
		return cache.Key(productsPrefix)
	}
	return cache.Key(productsPrefix, categorySlug)
}

func productKey(id string) string     { return cache.Key("product", id) }
func cartKey(userID string) string     { return cache.Key("cart", userID) }
func wishlistKey(userID string) string { return cache.Key("wishlist", userID) }
func ordersKey(userID string) string   { return cache.Key("orders", userID) }
func orderKey(id string) string        { return cache.Key("order", id) }
func revokedKey(jti string) string     { return cache.Key("revoked", jti) }

package models

// CartItem is one line of a user's server-resident cart.
type CartItem struct {
	Base
	UserID    string   `json:"user_id" gorm:"type:varchar(36);index;not null"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Quantity  int      `json:"quantity" gorm:"not null"`
	Size      string   `json:"size" gorm:"type:varchar(20)"`
	Color     string   `json:"color" gorm:"type:varchar(40)"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// WishlistItem records that a user saved a product. One row per (user, product).
type WishlistItem struct {
	Base
	UserID    string   `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_user_product"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

package models

import "vastraa/internal/pricing"

// Category groups products into a collection.
type Category struct {
	Base
	Name        string `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" gorm:"uniqueIndex;type:varchar(120);not null" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// Product represents a product in the catalog.
type Product struct {
	Base
	Name          string         `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=3,max=200"`
	Description   string         `json:"description" validate:"omitempty,max=2000"`
	Price         float64        `json:"price" gorm:"not null" validate:"required,gt=0"`
	OriginalPrice *float64       `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity int            `json:"stock_quantity" validate:"gte=0"`
	CategoryID    *string        `json:"category_id,omitempty" gorm:"type:varchar(36);index"`
	Fabric        string         `json:"fabric" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Rating        float64        `json:"rating" validate:"gte=0,lte=5"`
	Category      *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images        []ProductImage `json:"product_images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	// Derived on read.
	Image    string `json:"image,omitempty" gorm:"-"`
	Discount int    `json:"discount" gorm:"-"`
}

// ProductImage is one picture of a product.
type ProductImage struct {
	Base
	ProductID string `json:"product_id" gorm:"type:varchar(36);index;not null"`
	URL       string `json:"url" gorm:"not null" validate:"required,url"`
	IsPrimary bool   `json:"is_primary"`
}

// PrimaryImage returns the URL of the image flagged primary, falling back to the first image.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// DiscountPercent returns the rounded percentage saved against the original price,
// or 0 when there is no markdown.
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice == nil {
		return 0
	}
	return pricing.Discount(p.Price, *p.OriginalPrice)
}

// Resolve fills the derived fields from the loaded columns and associations.
func (p *Product) Resolve() {
	p.Image = p.PrimaryImage()
	p.Discount = p.DiscountPercent()
}

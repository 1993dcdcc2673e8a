package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the columns every table shares.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// All lists every persisted model, in dependency order, for migrations.
func All() []any {
	return []any{
		&User{},
		&OTPCode{},
		&Category{},
		&Product{},
		&ProductImage{},
		&CartItem{},
		&WishlistItem{},
		&Address{},
		&Order{},
		&OrderItem{},
	}
}

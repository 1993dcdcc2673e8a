package models

import "time"

// User represents a shopper or back-office operator.
type User struct {
	Base
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	FullName string `json:"full_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Password string `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, empty for OTP-only accounts
	Role     string `json:"role" gorm:"type:varchar(20);not null;default:customer"`
}

// OTPCode is a one-time sign-in code issued to an email address.
type OTPCode struct {
	Base
	Email     string    `gorm:"type:varchar(255);index;not null"`
	CodeHash  string    `gorm:"type:varchar(255);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Consumed  bool      `gorm:"not null;default:false"`
}

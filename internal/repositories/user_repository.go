package repositories

import (
	"context"
	"time"

	"vastraa/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Count(ctx context.Context) (int64, error)
}

// OTPRepository defines the interface for one-time code data access.
type OTPRepository interface {
	Create(ctx context.Context, code *models.OTPCode) error
	// ListActive returns unconsumed, unexpired codes for email, newest first.
	ListActive(ctx context.Context, email string, now time.Time) ([]models.OTPCode, error)
	// Consume marks a code used. It fails with NotFound if the code was already consumed.
	Consume(ctx context.Context, id string) error
}

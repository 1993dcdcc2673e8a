package repositories

import (
	"context"
	"time"

	"vastraa/internal/apperrors"
	"vastraa/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return apperrors.Remote("failed to create user", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, classify(err, apperrors.NotFound("user with email %s not found", email), "failed to get user by email")
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, classify(err, apperrors.NotFound("user with ID %s not found", id), "failed to get user by ID")
	}
	return &user, nil
}

func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return apperrors.Remote("failed to update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user with ID %s not found", id)
	}
	return nil
}

func (r *GORMUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, apperrors.Remote("failed to count users", err)
	}
	return n, nil
}

// GORMOTPRepository is a GORM implementation of OTPRepository.
type GORMOTPRepository struct {
	db *gorm.DB
}

// NewGORMOTPRepository creates a new instance of GORMOTPRepository.
func NewGORMOTPRepository(db *gorm.DB) *GORMOTPRepository {
	return &GORMOTPRepository{db: db}
}

func (r *GORMOTPRepository) Create(ctx context.Context, code *models.OTPCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return apperrors.Remote("failed to store one-time code", err)
	}
	return nil
}

func (r *GORMOTPRepository) ListActive(ctx context.Context, email string, now time.Time) ([]models.OTPCode, error) {
	var codes []models.OTPCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND consumed = ? AND expires_at > ?", email, false, now).
		Order("created_at DESC").
		Find(&codes).Error
	if err != nil {
		return nil, apperrors.Remote("failed to load one-time codes", err)
	}
	return codes, nil
}

func (r *GORMOTPRepository) Consume(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.OTPCode{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)
	if res.Error != nil {
		return apperrors.Remote("failed to consume one-time code", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("one-time code already used")
	}
	return nil
}

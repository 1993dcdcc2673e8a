package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vastraa/internal/apperrors"
	"vastraa/internal/cache"
	"vastraa/internal/database"
	"vastraa/internal/models"
	"vastraa/internal/repositories"
	"vastraa/internal/services"
	"vastraa/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(t *testing.T, sender services.OTPSender) (*services.AuthService, *cache.MemoryStore) {
	t.Helper()
	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	store := cache.NewMemoryStore()
	svc := services.NewAuthService(
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMOTPRepository(db),
		store,
		sender,
		services.AuthConfig{JWTSecret: testJWTSecret, TokenTTL: time.Hour},
		zap.NewNop(),
	)
	return svc, store
}

func TestAuthService_SignUpRejectsDuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewAuthService(mockRepo, nil, nil, nil, services.AuthConfig{JWTSecret: testJWTSecret}, zap.NewNop())

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(&models.User{Email: "test@example.com"}, nil).Once()
	_, err := svc.SignUp(context.Background(), services.SignUpInput{Email: " Test@Example.com ", Password: "password123"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SignUpHashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := services.NewAuthService(mockRepo, nil, nil, nil, services.AuthConfig{JWTSecret: testJWTSecret}, zap.NewNop())

	mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, apperrors.NotFound("user with email new@example.com not found")).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.SignUp(context.Background(), services.SignUpInput{Email: "new@example.com", Password: "password123", FullName: "New User"})
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	assert.Equal(t, session.RoleCustomer, user.Role)

	_, err = svc.SignUp(context.Background(), services.SignUpInput{Email: "not-an-email", Password: "short"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailed))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_PasswordSignInAndValidate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, nil)

	user, err := svc.SignUp(ctx, services.SignUpInput{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.SignInWithPassword(ctx, "test@example.com", "wrongpassword")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
	_, err = svc.SignInWithPassword(ctx, "nobody@example.com", "password123")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
	assert.Equal(t, "invalid credentials", err.Error())

	result, err := svc.SignInWithPassword(ctx, "TEST@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	sess, err := svc.ValidateToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, "test@example.com", sess.Email)
	assert.Equal(t, session.RoleCustomer, sess.Role)
	assert.NotEmpty(t, sess.TokenID)

	profile, err := svc.GetUser(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
}

func TestAuthService_ValidateTokenRejectsForeignAndExpired(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, nil)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString([]byte("another_secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, signed)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, err = expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, signed)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	_, err = svc.ValidateToken(ctx, "not.a.token")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
}

func TestAuthService_SignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthService(t, nil)

	_, err := svc.SignUp(ctx, services.SignUpInput{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	result, err := svc.SignInWithPassword(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, result.Token))
	assert.Equal(t, 1, store.Len())

	_, err = svc.ValidateToken(ctx, result.Token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")

	other, err := svc.SignInWithPassword(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, other.Token)
	assert.NoError(t, err, "signing out one token leaves others valid")
}

func TestAuthService_OTPSignInCreatesUserOnce(t *testing.T) {
	ctx := context.Background()
	sender := &capturingSender{}
	svc, _ := newAuthService(t, sender)

	require.NoError(t, svc.RequestOTP(ctx, "Shopper@Example.com"))
	assert.Equal(t, "shopper@example.com", sender.email)
	assert.Len(t, sender.code, 6)
	assert.True(t, sender.expiresAt.After(time.Now()))

	_, err := svc.VerifyOTP(ctx, "shopper@example.com", "not-it")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	first, err := svc.VerifyOTP(ctx, "shopper@example.com", sender.code)
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", first.User.Email)
	assert.Equal(t, session.RoleCustomer, first.User.Role)

	_, err = svc.VerifyOTP(ctx, "shopper@example.com", sender.code)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired), "codes are single use")

	require.NoError(t, svc.RequestOTP(ctx, "shopper@example.com"))
	second, err := svc.VerifyOTP(ctx, "shopper@example.com", sender.code)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestAuthService_OTPRequestsAreRateLimited(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, &capturingSender{})

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RequestOTP(ctx, "busy@example.com"))
	}
	err := svc.RequestOTP(ctx, "busy@example.com")
	assert.True(t, apperrors.Is(err, apperrors.KindRateLimited))

	assert.NoError(t, svc.RequestOTP(ctx, "calm@example.com"), "limits are per email")
	assert.True(t, apperrors.Is(svc.RequestOTP(ctx, "nope"), apperrors.KindValidationFailed))
}

func TestAuthService_OTPGuessesAreRateLimited(t *testing.T) {
	ctx := context.Background()
	sender := &capturingSender{}
	svc, _ := newAuthService(t, sender)

	require.NoError(t, svc.RequestOTP(ctx, "target@example.com"))
	wrong := "000000"
	if sender.code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 5; i++ {
		_, err := svc.VerifyOTP(ctx, "target@example.com", wrong)
		require.True(t, apperrors.Is(err, apperrors.KindAuthRequired), "attempt %d", i+1)
	}

	_, err := svc.VerifyOTP(ctx, "Target@Example.com", sender.code)
	assert.True(t, apperrors.Is(err, apperrors.KindRateLimited), "even the right code is refused once the budget is spent")

	require.NoError(t, svc.RequestOTP(ctx, "other@example.com"))
	_, err = svc.VerifyOTP(ctx, "other@example.com", sender.code)
	assert.NoError(t, err, "guess budgets are per email")
}

func TestAuthService_OTPSendFailure(t *testing.T) {
	svc, _ := newAuthService(t, &capturingSender{err: errors.New("smtp down")})
	err := svc.RequestOTP(context.Background(), "a@example.com")
	assert.True(t, apperrors.Is(err, apperrors.KindRemoteFailure))
}

func TestAuthService_ChangePasswordAndEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t, nil)

	admin, err := svc.EnsureAdmin(ctx, "admin@vastraa.com", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, admin.Role)
	again, err := svc.EnsureAdmin(ctx, "admin@vastraa.com", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	sess := session.Session{UserID: admin.ID, Role: session.RoleAdmin}
	assert.True(t, apperrors.Is(svc.ChangePassword(ctx, sess, "wrong", "new-password-1"), apperrors.KindAuthRequired))
	require.NoError(t, svc.ChangePassword(ctx, sess, "admin-password", "new-password-1"))

	_, err = svc.SignInWithPassword(ctx, "admin@vastraa.com", "new-password-1")
	assert.NoError(t, err)
}

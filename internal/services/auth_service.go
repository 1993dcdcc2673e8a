package services

import (
	"context"
	"fmt"
	"time"

	"vastraa/internal/apperrors"
	"vastraa/internal/cache"
	"vastraa/internal/models"
	"vastraa/internal/repositories"
	"vastraa/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// AuthConfig tunes token and one-time code lifetimes.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	// OTPRate and OTPBurst bound how often a code may be requested per email.
	OTPRate  rate.Limit
	OTPBurst int
	// VerifyRate and VerifyBurst bound code guesses per email.
	VerifyRate  rate.Limit
	VerifyBurst int
}

// SignUpInput is the payload for password sign-up.
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

var errInvalidCredentials = apperrors.New(apperrors.KindAuthRequired, "invalid credentials", nil)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	users     repositories.UserRepository
	otps      repositories.OTPRepository
	revoked   cache.Store
	sender    OTPSender
	limiter   *keyedLimiter
	verifier  *keyedLimiter
	jwtSecret []byte
	tokenTTL  time.Duration
	otpTTL    time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService. revoked holds signed-out token IDs; when nil,
// sign-out cannot revoke tokens before they expire.
func NewAuthService(users repositories.UserRepository, otps repositories.OTPRepository, revoked cache.Store, sender OTPSender, cfg AuthConfig, log *zap.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	if cfg.OTPRate == 0 {
		cfg.OTPRate = rate.Every(time.Minute)
	}
	if cfg.OTPBurst <= 0 {
		cfg.OTPBurst = 3
	}
	if cfg.VerifyRate == 0 {
		cfg.VerifyRate = rate.Every(time.Minute)
	}
	if cfg.VerifyBurst <= 0 {
		cfg.VerifyBurst = 5
	}
	return &AuthService{
		users:     users,
		otps:      otps,
		revoked:   revoked,
		sender:    sender,
		limiter:   newKeyedLimiter(cfg.OTPRate, cfg.OTPBurst, cfg.OTPTTL),
		verifier:  newKeyedLimiter(cfg.VerifyRate, cfg.VerifyBurst, cfg.OTPTTL),
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		otpTTL:    cfg.OTPTTL,
		log:       log,
		now:       time.Now,
	}
}

// SignUp registers a password account.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict("email '%s' already registered", in.Email)
	}
	if err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Email:    in.Email,
		FullName: in.FullName,
		Password: string(hashedPassword),
		Role:     session.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// SignInWithPassword checks a password and issues a token. It never reveals whether the email exists.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.signIn(user)
}

// RequestOTP issues a six digit sign-in code and sends it to email.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return apperrors.Validation("invalid email address")
	}
	if !s.limiter.Allow(email) {
		return apperrors.RateLimited("too many code requests, try again later")
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}
	expiresAt := s.now().Add(s.otpTTL)
	if err := s.otps.Create(ctx, &models.OTPCode{Email: email, CodeHash: string(hash), ExpiresAt: expiresAt}); err != nil {
		return err
	}
	if err := s.sender.SendOTP(ctx, email, code, expiresAt); err != nil {
		return apperrors.Remote("failed to send code", err)
	}
	return nil
}

// VerifyOTP exchanges a valid code for a token. The first verification for an email creates
// its account. Every attempt, right or wrong, spends from the email's guess budget.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if !s.verifier.Allow(email) {
		s.log.Warn("one-time code guesses throttled", zap.String("email", email))
		return nil, apperrors.RateLimited("too many code attempts, try again later")
	}
	codes, err := s.otps.ListActive(ctx, email, s.now())
	if err != nil {
		return nil, err
	}

	var matched *models.OTPCode
	for i := range codes {
		if bcrypt.CompareHashAndPassword([]byte(codes[i].CodeHash), []byte(code)) == nil {
			matched = &codes[i]
			break
		}
	}
	if matched == nil {
		return nil, apperrors.New(apperrors.KindAuthRequired, "invalid or expired code", nil)
	}
	if err := s.otps.Consume(ctx, matched.ID); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.New(apperrors.KindAuthRequired, "invalid or expired code", nil)
		}
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		user = &models.User{Email: email, Role: session.RoleCustomer}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("user registered by one-time code", zap.String("user_id", user.ID))
	} else if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// SignOut revokes the token until it would have expired.
func (s *AuthService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	jti, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)
	ttl := time.Unix(int64(exp), 0).Sub(s.now())
	if s.revoked == nil || jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKey(jti), []byte("1"), ttl); err != nil {
		return apperrors.Remote("failed to revoke token", err)
	}
	return nil
}

// ValidateToken parses and validates a JWT token, returning the session it grants.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (session.Session, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{}
	sess.UserID, _ = claims["user_id"].(string)
	sess.Email, _ = claims["email"].(string)
	sess.Role, _ = claims["role"].(string)
	sess.TokenID, _ = claims["jti"].(string)
	if sess.UserID == "" {
		return session.Session{}, apperrors.New(apperrors.KindAuthRequired, "invalid token", nil)
	}

	if s.revoked != nil && sess.TokenID != "" {
		_, revoked, err := s.revoked.Get(ctx, revokedKey(sess.TokenID))
		if err != nil {
			return session.Session{}, apperrors.Remote("failed to check token revocation", err)
		}
		if revoked {
			return session.Session{}, apperrors.New(apperrors.KindAuthRequired, "token has been revoked", nil)
		}
	}
	return sess, nil
}

// GetUser returns the profile of the signed-in user.
func (s *AuthService) GetUser(ctx context.Context, sess session.Session) (*models.User, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, sess.UserID)
}

// ChangePassword sets a new password. Accounts that already have one must confirm it.
func (s *AuthService) ChangePassword(ctx context.Context, sess session.Session, current, next string) error {
	if err := sess.Require(); err != nil {
		return err
	}
	if err := validate.Var(next, "required,min=8,max=72"); err != nil {
		return apperrors.Validation("password must be between 8 and 72 characters")
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if user.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
			return errInvalidCredentials
		}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hashed))
}

// EnsureAdmin creates the back-office account if it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if user.Role != session.RoleAdmin {
			return nil, apperrors.Conflict("user %s exists and is not an admin", email)
		}
		return user, nil
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user = &models.User{Email: email, FullName: "Administrator", Password: string(hashed), Role: session.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindAuthRequired, "invalid or expired token", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.New(apperrors.KindAuthRequired, "invalid token", nil)
	}
	return claims, nil
}

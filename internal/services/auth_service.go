package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"tweeps/internal/models"
	"tweeps/internal/repositories"
	"tweeps/pkg/cache"

	"github.com/dgrijalva/jwt-go"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour

	// Per-email login throttle, distinct from the per-account lockout
	// counter: a fixed window tracked in Redis that answers 429 once the
	// ceiling is hit. Degrades to no throttling when Redis is down.
	defaultThrottleLimit  = 10
	defaultThrottleWindow = time.Minute
)

// AuthService handles registration, login, token issuance, and lockout.
type AuthService struct {
	users          repositories.UserRepository
	store          *cache.Cache
	jwtSecret      []byte
	throttleLimit  int64
	throttleWindow time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, store *cache.Cache, jwtSecret string) *AuthService {
	return &AuthService{
		users:          users,
		store:          store,
		jwtSecret:      []byte(jwtSecret),
		throttleLimit:  defaultThrottleLimit,
		throttleWindow: defaultThrottleWindow,
	}
}

// ConfigureThrottle overrides the per-email login throttle ceiling and window.
func (s *AuthService) ConfigureThrottle(limit int64, window time.Duration) {
	if limit > 0 {
		s.throttleLimit = limit
	}
	if window > 0 {
		s.throttleWindow = window
	}
}

// Register creates a new account. Username and email must be unused; the
// password must satisfy the policy. The plaintext password is hashed and
// discarded before anything is persisted.
func (s *AuthService) Register(user *models.User, password string) error {
	if err := user.Validate(); err != nil {
		return err
	}
	user.Email = models.NormalizeEmail(user.Email)

	if _, err := s.users.GetByUsername(user.Username); err == nil {
		return fmt.Errorf("%w: username %q already taken", models.ErrConflict, user.Username)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(user.Email); err == nil {
		return fmt.Errorf("%w: email %q already registered", models.ErrConflict, user.Email)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}
	user.IsActive = true
	return s.users.Create(user)
}

// Login authenticates by email and returns an access/refresh token pair.
// Failures count against both the Redis per-email throttle and the
// per-account lockout counter; the counter mutation is persisted even on
// failure so the lockout survives across requests.
func (s *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	throttleKey := "login:throttle:" + models.NormalizeEmail(email)
	if count, live := s.store.Incr(ctx, throttleKey, s.throttleWindow); live && count > s.throttleLimit {
		return "", "", fmt.Errorf("%w: retry later", models.ErrTooManyAttempts)
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", "", models.ErrInvalidCredentials
		}
		return "", "", err
	}
	if !user.IsActive {
		return "", "", models.ErrInvalidCredentials
	}
	if user.Locked() {
		return "", "", fmt.Errorf("%w: too many failed logins", models.ErrAccountLocked)
	}

	ok := user.CheckPassword(password)
	if saveErr := s.users.Save(user); saveErr != nil {
		return "", "", saveErr
	}
	if !ok {
		if user.Locked() {
			return "", "", fmt.Errorf("%w: too many failed logins", models.ErrAccountLocked)
		}
		return "", "", models.ErrInvalidCredentials
	}

	accessToken, err = s.issueToken(user, "access", accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.issueToken(user, "refresh", refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseToken(ctx, refreshToken, "refresh")
	if err != nil {
		return "", err
	}
	userID, _ := claims["user_id"].(string)
	user, err := s.users.GetByID(userID, false)
	if err != nil {
		return "", fmt.Errorf("%w: unknown token subject", models.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return "", models.ErrInvalidCredentials
	}
	return s.issueToken(user, "access", accessTokenTTL)
}

// Logout denylists the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(ctx, tokenString, "")
	if err != nil {
		return err
	}
	ttl := accessTokenTTL
	if exp, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
			ttl = remaining
		}
	}
	s.store.Set(ctx, denylistKey(tokenString), "1", ttl)
	return nil
}

// ValidateToken parses and validates an access token, rejecting denylisted
// tokens, and returns its claims.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	return s.parseToken(ctx, tokenString, "access")
}

// GetUser loads an active user for an authenticated request.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	return s.users.GetByID(id, false)
}

// ResetLoginAttempts clears a user's lockout counter. Admin only; the actor
// is passed explicitly rather than read from ambient state.
func (s *AuthService) ResetLoginAttempts(actor *models.User, userID string) error {
	if actor == nil || !actor.IsAdmin {
		return fmt.Errorf("%w: admin privileges required", models.ErrForbidden)
	}
	user, err := s.users.GetByID(userID, false)
	if err != nil {
		return err
	}
	user.ResetLoginAttempts()
	return s.users.Save(user)
}

func (s *AuthService) issueToken(user *models.User, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"typ":     typ,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}
	if typ == "access" {
		claims["username"] = user.Username
		claims["is_admin"] = user.IsAdmin
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates signature, expiry, denylist membership, and, when
// wantTyp is non-empty, the token type claim.
func (s *AuthService) parseToken(ctx context.Context, tokenString, wantTyp string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidCredentials, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", models.ErrInvalidCredentials)
	}
	if wantTyp != "" {
		if typ, _ := claims["typ"].(string); typ != wantTyp {
			return nil, fmt.Errorf("%w: wrong token type", models.ErrInvalidCredentials)
		}
	}
	if s.store.Exists(ctx, denylistKey(tokenString)) {
		return nil, fmt.Errorf("%w: token revoked", models.ErrInvalidCredentials)
	}
	return claims, nil
}

func denylistKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return "token:denylist:" + hex.EncodeToString(sum[:])
}

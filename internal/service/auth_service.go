package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"regnify/internal/config"
	"regnify/internal/domain"
	"regnify/internal/metrics"
	"regnify/internal/port"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Claims represents the JWT claims carried by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID       `json:"user_id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresAt    time.Time    `json:"expires_at"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *domain.User `json:"user,omitempty"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Login(ctx context.Context, input LoginInput, actor Actor) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, claims *Claims, actor Actor) error
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  port.UserRepository
	auditRepo port.AuditRepository
	sessions  port.SessionStore
	metrics   *metrics.Metrics
	jwtCfg    config.JWTConfig
	authCfg   config.AuthConfig
	now       func() time.Time
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(
	userRepo port.UserRepository,
	auditRepo port.AuditRepository,
	sessions port.SessionStore,
	m *metrics.Metrics,
	jwtCfg config.JWTConfig,
	authCfg config.AuthConfig,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		sessions:  sessions,
		metrics:   m,
		jwtCfg:    jwtCfg,
		authCfg:   authCfg,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput, actor Actor) (*TokenPair, error) {
	remaining, err := s.sessions.LockedFor(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if remaining > 0 {
		s.auditLogin(ctx, domain.AuditLoginFailed, input.Username, actor, "account locked")
		s.metrics.IncrementLogin("locked")
		return nil, domain.ErrAccountLocked
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.auditLogin(ctx, domain.AuditLoginFailed, input.Username, actor, "unknown user")
			s.metrics.IncrementLogin("failed")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if user.Status != domain.UserStatusActive {
		s.auditLogin(ctx, domain.AuditLoginFailed, input.Username, actor, "user inactive")
		s.metrics.IncrementLogin("inactive")
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordFailure(ctx, input.Username)
		s.auditLogin(ctx, domain.AuditLoginFailed, input.Username, actor, "invalid credentials")
		s.metrics.IncrementLogin("failed")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.sessions.ResetFailures(ctx, user.Username); err != nil {
		log.Printf("auth.Login: resetting failures for %s: %v", user.Username, err)
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("auth.Login: updating last login for %s: %v", user.Username, err)
	}
	now := s.now()
	user.LastLogin = &now

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}
	s.auditLogin(ctx, domain.AuditLoginSuccess, user.Username, actor, "")
	s.metrics.IncrementLogin("success")
	return pair, nil
}

// recordFailure counts a bad password and locks the account once the limit is reached.
func (s *authService) recordFailure(ctx context.Context, username string) {
	n, err := s.sessions.IncrementFailures(ctx, username, s.authCfg.LockDuration)
	if err != nil {
		log.Printf("auth.recordFailure: %s: %v", username, err)
		return
	}
	if n < int64(s.authCfg.MaxLoginAttempts) {
		return
	}
	if err := s.sessions.Lock(ctx, username, s.authCfg.LockDuration); err != nil {
		log.Printf("auth.recordFailure: locking %s: %v", username, err)
		return
	}
	if err := s.sessions.ResetFailures(ctx, username); err != nil {
		log.Printf("auth.recordFailure: resetting failures for %s: %v", username, err)
	}
	s.metrics.IncrementLockouts()
	log.Printf("auth.recordFailure: account %s locked for %s", username, s.authCfg.LockDuration)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, audienceRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.ErrUserInactive
	}

	// the presented refresh token is single use
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.generateTokenPair(user)
}

func (s *authService) Logout(ctx context.Context, claims *Claims, actor Actor) error {
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	s.auditLogin(ctx, domain.AuditLogout, claims.Username, actor, "")
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.validateTokenString(tokenString, audienceAccess)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *authService) checkRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := s.sessions.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("auth.checkRevoked: %w", err)
	}
	if revoked {
		return domain.ErrUnauthorized
	}
	return nil
}

// revoke blocks the token id until the token would have expired anyway.
func (s *authService) revoke(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.sessions.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("auth.revoke: %w", err)
	}
	return nil
}

func (s *authService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := s.now()
	accessExpiry := now.Add(s.jwtCfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.jwtCfg.RefreshTokenExpiry)

	accessToken, err := s.sign(user, audienceAccess, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := s.sign(user, audienceRefresh, now, refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiry,
		ExpiresIn:    int64(s.jwtCfg.AccessTokenExpiry.Seconds()),
		User:         user,
	}, nil
}

func (s *authService) sign(user *domain.User, audience string, issued, expires time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, audience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *authService) auditLogin(ctx context.Context, action domain.AuditAction, username string, actor Actor, errMsg string) {
	status := auditSuccess
	if errMsg != "" {
		status = auditFailed
	}
	entry := &domain.AuditLog{
		ID:           uuid.New(),
		Action:       action,
		EntityType:   domain.AuditEntityUser,
		PerformedBy:  username,
		PerformedAt:  s.now(),
		Status:       status,
		ErrorMessage: errMsg,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("auth.auditLogin: %s for %s: %v", action, username, err)
	}
}

package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"billingportal/internal/caching"
	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
)

// Auth error codes passed back to the login page
const (
	ErrCodeInvalidToken = "invalid_token"
	ErrCodeExpiredToken = "expired_token"
)

const (
	magicLinkRateLimit  = 5
	magicLinkRateWindow = 15 * time.Minute
	sessionCacheTTL     = 5 * time.Minute
)

// MagicLinkSentMessage is returned whether or not the address is known
const MagicLinkSentMessage = "If an account exists with this email, you will receive a login link shortly."

// AuthService issues magic links and manages portal sessions
type AuthService interface {
	RequestMagicLink(ctx context.Context, email string, meta models.RequestMeta) error
	VerifyMagicLink(ctx context.Context, token string, meta models.RequestMeta) (*Session, error)
	ValidateSession(ctx context.Context, token string) (uuid.UUID, error)
	Logout(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// Session is a freshly issued portal session
type Session struct {
	Token     string
	Customer  *models.Customer
	ExpiresAt time.Time
}

// AuthSettings holds the knobs AuthService needs from configuration
type AuthSettings struct {
	SiteURL      string
	MagicLinkTTL time.Duration
	SessionTTL   time.Duration
}

type authService struct {
	customers     repositories.CustomerRepository
	tokens        repositories.AuthTokenRepository
	activity      repositories.ActivityRepository
	cache         caching.CacheService
	notifications NotificationService
	settings      AuthSettings
	now           func() time.Time
}

func NewAuthService(
	customers repositories.CustomerRepository,
	tokens repositories.AuthTokenRepository,
	activity repositories.ActivityRepository,
	cache caching.CacheService,
	notifications NotificationService,
	settings AuthSettings,
) AuthService {
	return &authService{
		customers:     customers,
		tokens:        tokens,
		activity:      activity,
		cache:         cache,
		notifications: notifications,
		settings:      settings,
		now:           time.Now,
	}
}

// generateToken returns 32 random bytes, hex encoded
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *authService) RequestMagicLink(ctx context.Context, email string, meta models.RequestMeta) error {
	normalized, err := common.NormalizeEmail(email)
	if err != nil {
		return err
	}

	limited, err := s.cache.IsRateLimited(ctx, "magic-link:"+normalized, magicLinkRateLimit, magicLinkRateWindow)
	if err != nil {
		log.Printf("WARN: rate limit check failed for magic link: %v", err)
	} else if limited {
		log.Printf("Magic link rate limit reached for %s", normalized)
		return nil
	}

	customer, err := s.customers.GetByEmail(ctx, normalized)
	if err != nil {
		return common.NewUpstreamError("look up customer", err)
	}
	if customer == nil {
		return nil
	}

	raw, err := generateToken()
	if err != nil {
		return common.NewInternalError(err)
	}
	token := &models.AuthToken{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		TokenHash:  hashToken(raw),
		TokenType:  models.TokenTypeMagicLink,
		ExpiresAt:  s.now().Add(s.settings.MagicLinkTTL),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return common.NewUpstreamError("create login link", err)
	}

	link := fmt.Sprintf("%s/portal/verify.html?token=%s", s.settings.SiteURL, url.QueryEscape(raw))
	if err := s.notifications.SendMagicLink(ctx, customer, link); err != nil {
		return common.NewUpstreamError("send login email", err)
	}
	return nil
}

func (s *authService) VerifyMagicLink(ctx context.Context, token string, meta models.RequestMeta) (*Session, error) {
	if token == "" {
		return nil, common.NewAuthError(ErrCodeInvalidToken)
	}
	now := s.now()
	hash := hashToken(token)

	stored, err := s.tokens.GetByHash(ctx, hash, models.TokenTypeMagicLink)
	if err != nil {
		return nil, common.NewUpstreamError("verify login link", err)
	}
	if stored == nil || stored.IsUsed() {
		return nil, common.NewAuthError(ErrCodeInvalidToken)
	}
	if stored.IsExpired(now) {
		return nil, common.NewAuthError(ErrCodeExpiredToken)
	}

	if err := s.tokens.ConsumeMagicLink(ctx, hash, now); err != nil {
		if errors.Is(err, repositories.ErrAlreadyApplied) {
			return nil, common.NewAuthError(ErrCodeInvalidToken)
		}
		return nil, common.NewUpstreamError("consume login link", err)
	}

	customer, err := s.customers.GetByID(ctx, stored.CustomerID)
	if err != nil {
		return nil, common.NewUpstreamError("load customer", err)
	}
	if customer == nil {
		return nil, common.NewAuthError(ErrCodeInvalidToken)
	}

	raw, err := generateToken()
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	session := &models.AuthToken{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		TokenHash:  hashToken(raw),
		TokenType:  models.TokenTypeSession,
		ExpiresAt:  now.Add(s.settings.SessionTTL),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := s.tokens.Create(ctx, session); err != nil {
		return nil, common.NewUpstreamError("create session", err)
	}
	s.cacheSession(ctx, session.TokenHash, customer.ID, session.ExpiresAt.Sub(now))

	if err := s.customers.TouchLastLogin(ctx, customer.ID); err != nil {
		log.Printf("Failed to update last login for customer %s: %v", customer.ID, err)
	}
	if err := s.activity.Log(ctx, &models.ActivityLog{
		CustomerID:   customer.ID,
		ActivityType: models.ActivityLogin,
		Description:  "Logged in via magic link",
		IPAddress:    meta.IPAddress,
	}); err != nil {
		log.Printf("Failed to record login activity for customer %s: %v", customer.ID, err)
	}

	return &Session{Token: raw, Customer: customer, ExpiresAt: session.ExpiresAt}, nil
}

func (s *authService) ValidateSession(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, common.NewAuthError("Not authenticated")
	}
	hash := hashToken(token)

	if id, ok, err := s.cache.GetSession(ctx, hash); err != nil {
		log.Printf("WARN: session cache lookup failed: %v", err)
	} else if ok {
		return id, nil
	}

	stored, err := s.tokens.GetByHash(ctx, hash, models.TokenTypeSession)
	if err != nil {
		return uuid.Nil, common.NewUpstreamError("validate session", err)
	}
	now := s.now()
	if stored == nil || stored.IsExpired(now) {
		return uuid.Nil, common.NewAuthError("Invalid or expired session")
	}

	s.cacheSession(ctx, hash, stored.CustomerID, stored.ExpiresAt.Sub(now))
	return stored.CustomerID, nil
}

func (s *authService) cacheSession(ctx context.Context, hash string, customerID uuid.UUID, remaining time.Duration) {
	ttl := sessionCacheTTL
	if remaining < ttl {
		ttl = remaining
	}
	if err := s.cache.SetSession(ctx, hash, customerID, ttl); err != nil {
		log.Printf("WARN: failed to cache session: %v", err)
	}
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	hash := hashToken(token)
	if err := s.cache.DeleteSession(ctx, hash); err != nil {
		log.Printf("WARN: failed to evict cached session: %v", err)
	}
	if err := s.tokens.DeleteByHash(ctx, hash); err != nil {
		return common.NewUpstreamError("log out", err)
	}
	return nil
}

func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return n, nil
}

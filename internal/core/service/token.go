package service

import (
	"context"
	"strings"
	"time"

	"github.com/yndnr/jobboard-go/internal/core/domain"
	"github.com/yndnr/jobboard-go/internal/telemetry/logger"
	"github.com/yndnr/jobboard-go/pkg/token"
)

// SessionObserver is notified of issued sessions.
type SessionObserver interface {
	SessionIssued()
}

// TokenServiceConfig holds configuration for TokenService.
type TokenServiceConfig struct {
	// TTL is the session lifetime (default: 1h).
	TTL time.Duration

	// Now overrides the clock (tests).
	Now func() time.Time

	Observer SessionObserver
}

// TokenService issues and verifies session credentials. It holds the only
// copy of the signing key; there is no server-side session state.
type TokenService struct {
	codec    *token.Codec
	ttl      time.Duration
	observer SessionObserver
}

// NewTokenService creates a TokenService keyed by secret.
func NewTokenService(secret []byte, cfg *TokenServiceConfig) (*TokenService, error) {
	if cfg == nil {
		cfg = &TokenServiceConfig{}
	}
	if len(secret) < token.MinSecretLength {
		return nil, domain.ErrInvalidArgument.WithDetails("session secret must be at least 32 bytes")
	}

	var opts []token.Option
	if cfg.Now != nil {
		opts = append(opts, token.WithClock(cfg.Now))
	}
	codec, err := token.NewCodec(secret, opts...)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithCause(err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &TokenService{codec: codec, ttl: ttl, observer: cfg.Observer}, nil
}

// TTL returns the configured session lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a credential for identity with the configured TTL.
// The identity is trusted as given.
func (s *TokenService) Issue(ctx context.Context, identity string) (string, *domain.Credential, error) {
	return s.IssueWithTTL(ctx, identity, s.ttl)
}

// IssueWithTTL signs a credential for identity expiring after ttl.
func (s *TokenService) IssueWithTTL(ctx context.Context, identity string, ttl time.Duration) (string, *domain.Credential, error) {
	if strings.TrimSpace(identity) == "" {
		return "", nil, domain.ErrMissingArgument.WithDetails("email")
	}

	raw, claims, err := s.codec.Sign(identity, ttl)
	if err != nil {
		return "", nil, domain.ErrInternalServer.WithCause(err)
	}
	if s.observer != nil {
		s.observer.SessionIssued()
	}

	logger.L(ctx).Info("session issued", "email", identity, "expires_at", claims.ExpiresAt.Time)
	return raw, credentialFrom(claims), nil
}

// Verify checks raw and returns its credential. Every failure, whatever
// its cause, is reported as domain.ErrTokenInvalid; the cause is only
// logged at debug level.
func (s *TokenService) Verify(ctx context.Context, raw string) (*domain.Credential, error) {
	if raw == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.codec.Parse(raw)
	if err != nil {
		logger.L(ctx).Debug("session token rejected", "reason", err.Error())
		return nil, domain.ErrTokenInvalid
	}
	return credentialFrom(claims), nil
}

func credentialFrom(c *token.Claims) *domain.Credential {
	cred := &domain.Credential{Identity: c.Email}
	if c.IssuedAt != nil {
		cred.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		cred.ExpiresAt = c.ExpiresAt.Time
	}
	return cred
}

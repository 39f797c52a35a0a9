package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// KeyLength is the size of the derived HMAC key in bytes.
const KeyLength = 32

// MinSecretLength is the minimum accepted length of a configured secret.
const MinSecretLength = 32

// hkdfInfo binds derived keys to their use so the same secret cannot be
// replayed as a key for some other primitive.
const hkdfInfo = "jobboard session token v1 hs256"

// Failure reasons. Callers outside the service layer should never see these
// directly; they exist so internal logs can tell the cases apart.
var (
	ErrMalformed = errors.New("token: malformed")
	ErrSignature = errors.New("token: signature mismatch")
	ErrExpired   = errors.New("token: expired")
	ErrClaims    = errors.New("token: invalid claims")
)

// Claims is the payload of a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// DeriveKey expands secret into a fixed-size HMAC key with HKDF-SHA256.
func DeriveKey(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty secret")
	}
	key := make([]byte, KeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("token: derive key: %w", err)
	}
	return key, nil
}

// Codec signs and verifies session tokens with a single key.
// It is safe for concurrent use.
type Codec struct {
	key []byte
	now func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec keyed by the HKDF derivation of secret.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	c := &Codec{key: key, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sign issues a token for email that expires ttl after now.
// The output is deterministic for a given key, email, ttl and clock reading.
func (c *Codec) Sign(email string, ttl time.Duration) (string, *Claims, error) {
	issued := c.now().Truncate(time.Second)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", nil, fmt.Errorf("token: sign: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies raw and returns its claims.
//
// Only HS256 is accepted, exp is mandatory and segments must be canonical
// base64url, so no two distinct strings verify as the same token. The
// returned error wraps one of ErrMalformed, ErrSignature, ErrExpired or
// ErrClaims.
func (c *Codec) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.Email == "" || claims.Subject != claims.Email {
		return nil, ErrClaims
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrClaims, err)
	}
}

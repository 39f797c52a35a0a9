package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := DeriveKey(testSecret)
	k3, _ := DeriveKey([]byte("another-secret-another-secret-!!"))

	if len(k1) != KeyLength {
		t.Errorf("key length = %d, want %d", len(k1), KeyLength)
	}
	if string(k1) != string(k2) {
		t.Error("derivation should be deterministic")
	}
	if string(k1) == string(k3) {
		t.Error("different secrets should derive different keys")
	}
	if string(k1) == string(testSecret) {
		t.Error("derived key should not equal the raw secret")
	}

	if _, err := DeriveKey(nil); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c, err := NewCodec(testSecret, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatal(err)
	}

	for _, email := range []string{"a@x.com", "someone+tag@example.org", "ünïcode@例え.jp"} {
		t.Run(email, func(t *testing.T) {
			raw, issued, err := c.Sign(email, time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			if !issued.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
				t.Errorf("exp = %v, want %v", issued.ExpiresAt.Time, now.Add(time.Hour))
			}

			claims, err := c.Parse(raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if claims.Email != email {
				t.Errorf("email = %q, want %q", claims.Email, email)
			}
		})
	}
}

func TestCodec_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c1, _ := NewCodec(testSecret, WithClock(fixedClock(now)))
	c2, _ := NewCodec(testSecret, WithClock(fixedClock(now)))

	t1, _, _ := c1.Sign("a@x.com", time.Hour)
	t2, _, _ := c2.Sign("a@x.com", time.Hour)
	if t1 != t2 {
		t.Error("identical inputs and clock should produce identical tokens")
	}
}

func TestCodec_Expired(t *testing.T) {
	c, _ := NewCodec(testSecret)

	raw, _, err := c.Sign("a@x.com", -time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Parse(raw); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestCodec_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := now
	c, _ := NewCodec(testSecret, WithClock(func() time.Time { return clock }))

	raw, _, _ := c.Sign("a@x.com", time.Hour)

	clock = now.Add(59 * time.Minute)
	if _, err := c.Parse(raw); err != nil {
		t.Errorf("token should still be valid: %v", err)
	}

	clock = now.Add(time.Hour + time.Second)
	if _, err := c.Parse(raw); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired after ttl, got %v", err)
	}
}

func TestCodec_TamperRejection(t *testing.T) {
	c, _ := NewCodec(testSecret)
	raw, _, _ := c.Sign("a@x.com", time.Hour)

	for i := 0; i < len(raw); i++ {
		b := []byte(raw)
		b[i] ^= 0x01
		if _, err := c.Parse(string(b)); err == nil {
			t.Fatalf("flipping byte %d (%q -> %q) still verified", i, raw[i], b[i])
		}
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	c1, _ := NewCodec(testSecret)
	c2, _ := NewCodec([]byte("ffffffffffffffffffffffffffffffff"))

	raw, _, _ := c1.Sign("a@x.com", time.Hour)
	if _, err := c2.Parse(raw); !errors.Is(err, ErrSignature) {
		t.Errorf("expected ErrSignature, got %v", err)
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	c, _ := NewCodec(testSecret)
	claims := &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Parse(none); err == nil {
		t.Error("alg=none token must be rejected")
	}

	key, _ := DeriveKey(testSecret)
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(key)
	if _, err := c.Parse(hs512); err == nil {
		t.Error("HS512 token must be rejected")
	}
}

func TestCodec_RequiresClaims(t *testing.T) {
	c, _ := NewCodec(testSecret)
	key, _ := DeriveKey(testSecret)

	noExp := &Claims{Email: "a@x.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "a@x.com"}}
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString(key)
	if _, err := c.Parse(raw); err == nil {
		t.Error("token without exp must be rejected")
	}

	noEmail := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	raw, _ = jwt.NewWithClaims(jwt.SigningMethodHS256, noEmail).SignedString(key)
	if _, err := c.Parse(raw); !errors.Is(err, ErrClaims) {
		t.Errorf("expected ErrClaims for empty email, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	c, _ := NewCodec(testSecret)

	for _, raw := range []string{"", "abc", "a.b.c", strings.Repeat(".", 5)} {
		if _, err := c.Parse(raw); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) = %v, want ErrMalformed", raw, err)
		}
	}
}

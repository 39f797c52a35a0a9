// Package token provides the signed session token codec.
//
// Tokens are compact HS256 JWTs carrying an email claim, issued-at and
// expiry. The HMAC key is derived from the configured secret with
// HKDF-SHA256, so rotating the secret invalidates every outstanding token.
package token

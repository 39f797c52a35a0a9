package handler

import (
	"context"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

type contextKey struct{}

// WithCredential attaches a verified credential to ctx.
func WithCredential(ctx context.Context, cred *domain.Credential) context.Context {
	return context.WithValue(ctx, contextKey{}, cred)
}

// CredentialFromContext returns the credential set by the session gate, or
// nil on a public route.
func CredentialFromContext(ctx context.Context) *domain.Credential {
	cred, _ := ctx.Value(contextKey{}).(*domain.Credential)
	return cred
}

// principal returns the verified identity, or "".
func principal(ctx context.Context) string {
	if cred := CredentialFromContext(ctx); cred != nil {
		return cred.Identity
	}
	return ""
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/yndnr/jobboard-go/internal/core/domain"
	"github.com/yndnr/jobboard-go/internal/core/service"
	"github.com/yndnr/jobboard-go/internal/telemetry/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Config holds the dependencies of Handler.
type Config struct {
	Tokens       *service.TokenService
	Jobs         *service.JobService
	Applications *service.ApplicationService

	// Production switches session cookies to Secure; SameSite=None.
	Production bool

	// Ready reports whether the backing store is reachable. Nil means
	// always ready.
	Ready func(ctx context.Context) error
}

// Handler serves the job board API.
type Handler struct {
	tokens  *service.TokenService
	jobs    *service.JobService
	apps    *service.ApplicationService
	cookies cookiePolicy
	ready   func(ctx context.Context) error
}

// New creates a Handler.
func New(cfg Config) *Handler {
	return &Handler{
		tokens:  cfg.Tokens,
		jobs:    cfg.Jobs,
		apps:    cfg.Applications,
		cookies: cookiePolicy{production: cfg.Production, ttl: cfg.Tokens.TTL()},
		ready:   cfg.Ready,
	}
}

// writeJSON writes data as a JSON response.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		w.Header().Set("X-Request-ID", id)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// WriteError writes err as {"message": ...} with the status derived from
// its domain code. Errors without a code are logged and reported as a bare
// internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		logger.L(r.Context()).Error("unhandled error", "error", err)
		de = domain.ErrInternalServer
	}

	status := StatusForCode(de.Code)
	message := de.Message
	if status >= http.StatusInternalServerError {
		logger.L(r.Context()).Error("request failed", "code", de.Code, "error", err)
	} else if de.Details != "" {
		message += ": " + de.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		w.Header().Set("X-Request-ID", id)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}

// StatusForCode maps a domain error code to an HTTP status. The last four
// digits of a code carry the status class.
func StatusForCode(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasPrefix(code, "JB-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeDocument reads a JSON object body. Numbers are kept as json.Number
// so integers survive unchanged.
func decodeDocument(r *http.Request) (domain.Document, error) {
	var doc domain.Document
	if err := decodeBody(r, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrBadRequest.WithDetails("body must be a JSON object")
	}
	return doc, nil
}

// decodeBody decodes exactly one JSON value; anything but whitespace after
// it is rejected.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return domain.ErrBadRequest.WithDetails("invalid JSON body").WithCause(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ErrBadRequest.WithDetails("unexpected data after JSON body")
	}
	return nil
}

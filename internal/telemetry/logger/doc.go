// Package logger provides structured logging on top of log/slog.
//
// Output is JSON by default (text for local runs). Attributes whose key
// suggests a secret (token, secret, password, cookie, ...) are replaced
// before they reach the handler, and JWT-shaped values are masked whatever
// their key, so a session token pasted into any log field stays unreadable.
//
// Request-scoped loggers carry the request id: use L(ctx).
package logger

package handler

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// cookiePolicy builds session cookies. In production the cookie is sent
// cross-site over TLS only; otherwise it is first-party only.
type cookiePolicy struct {
	production bool
	ttl        time.Duration
}

func (p cookiePolicy) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
		SameSite: http.SameSiteStrictMode,
	}
	if p.production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (p cookiePolicy) session(token string) *http.Cookie {
	return p.cookie(token, int(p.ttl/time.Second))
}

func (p cookiePolicy) cleared() *http.Cookie {
	return p.cookie("", -1)
}

// IssueSession handles POST /jwt: it signs a credential for the submitted
// email and sets it as the session cookie.
func (h *Handler) IssueSession(w http.ResponseWriter, r *http.Request) {
	var req IssueSessionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	raw, _, err := h.tokens.Issue(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	http.SetCookie(w, h.cookies.session(raw))
	writeJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// Logout handles POST /logout by expiring the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookies.cleared())
	writeJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}

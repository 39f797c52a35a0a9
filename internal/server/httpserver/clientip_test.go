package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func mustProxies(t *testing.T, entries ...string) ProxyList {
	t.Helper()
	list, err := ParseProxyList(entries)
	if err != nil {
		t.Fatalf("ParseProxyList(%v) error = %v", entries, err)
	}
	return list
}

func TestParseProxyList(t *testing.T) {
	list := mustProxies(t, "10.0.0.0/8", " 192.0.2.1 ", "2001:db8::/32")
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[1].Bits() != 32 {
		t.Errorf("bare IPv4 should become a /32, got /%d", list[1].Bits())
	}

	for _, bad := range []string{"proxy.internal", "10.0.0.0/33", ""} {
		if _, err := ParseProxyList([]string{bad}); err == nil {
			t.Errorf("ParseProxyList(%q) should fail", bad)
		}
	}
}

func TestProxyList_ClientIP(t *testing.T) {
	proxies := mustProxies(t, "10.0.0.0/8")

	tests := []struct {
		name    string
		proxies ProxyList
		remote  string
		xff     string
		realIP  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "", "", "192.0.2.1"},
		{"no port", nil, "192.0.2.9", "", "", "192.0.2.9"},
		{"forwarded for ignored without proxies", nil, "192.0.2.1:1", "203.0.113.5", "", "192.0.2.1"},
		{"real ip ignored without proxies", nil, "192.0.2.1:1", "", "198.51.100.7", "192.0.2.1"},
		{"forwarded for ignored from untrusted peer", proxies, "192.0.2.1:1", "203.0.113.5", "", "192.0.2.1"},
		{"trusted proxy", proxies, "10.0.0.1:1", "203.0.113.5", "", "203.0.113.5"},
		{"chain of trusted proxies", proxies, "10.0.0.1:1", "203.0.113.5, 10.1.1.1", "", "203.0.113.5"},
		{"client prepends a fake hop", proxies, "10.0.0.1:1", "1.1.1.1, 203.0.113.5", "", "203.0.113.5"},
		{"every hop trusted", proxies, "10.0.0.1:1", "10.9.9.9", "", "10.9.9.9"},
		{"garbage hop stops the walk", proxies, "10.0.0.1:1", "203.0.113.5, nonsense", "", "10.0.0.1"},
		{"real ip from trusted proxy", proxies, "10.0.0.1:1", "", "198.51.100.7", "198.51.100.7"},
		{"ipv6 peer", nil, "[2001:db8::1]:443", "", "", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := tt.proxies.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit_ForwardedForCannotRotateKey(t *testing.T) {
	registry := NewRateLimiterRegistry(1, 1)
	h := RateLimit(registry, nil)(okHandler)

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	if limited < 18 {
		t.Errorf("limited %d of 20 requests; a new X-Forwarded-For must not reset the bucket", limited)
	}
	if registry.Len() != 1 {
		t.Errorf("registry holds %d limiters, want 1", registry.Len())
	}
}

func TestRateLimit_TrustedProxyKeysOnClient(t *testing.T) {
	h := RateLimit(NewRateLimiterRegistry(1, 1), mustProxies(t, "10.0.0.1"))(okHandler)

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("203.0.113.1"); code != http.StatusOK {
		t.Fatalf("first client status = %d", code)
	}
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Errorf("second client behind the same proxy status = %d, want 200", code)
	}
	if code := send("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("repeat client status = %d, want 429", code)
	}
}

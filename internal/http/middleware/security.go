// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, the response hardening for the JSON API.
// Resource responses (user and project records) are marked no-store under the
// configured prefixes, HSTS is sent only over HTTPS, and X-Request-ID is made
// readable to browser clients. No CSP is set; the API serves no HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge applies when SecurityOptions.HSTSMaxAge is not positive.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests. Turn it
	// on only when the proxy-to-app hop is HTTPS as well.
	EnableHSTS bool
	HSTSMaxAge time.Duration

	// NoStore adds Cache-Control: no-store (plus Pragma/Expires) to paths
	// under NoStorePrefixes, or to every path when the list is empty.
	NoStore         bool
	NoStorePrefixes []string

	// EnablePolicy adds Permissions-Policy and
	// X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
}

type header struct{ name, value string }

var (
	baselineHeaders = []header{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	policyHeaders = []header{
		{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
		{"X-Permitted-Cross-Domain-Policies", "none"},
	}
	noStoreHeaders = []header{
		{"Cache-Control", "no-store"},
		{"Pragma", "no-cache"},
		{"Expires", "0"},
	}
)

// SecurityHeaders sets the hardening headers before the handler runs.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge/time.Second)) + "; includeSubDomains; preload"

	fixed := append([]header(nil), baselineHeaders...)
	if opt.EnablePolicy {
		fixed = append(fixed, policyHeaders...)
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		set(h, fixed)

		if opt.NoStore && matchesPrefix(c.Request.URL.Path, opt.NoStorePrefixes) {
			set(h, noStoreHeaders)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}

		c.Next()
	}
}

func set(h http.Header, hs []header) {
	for _, kv := range hs {
		h.Set(kv.name, kv.value)
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case !strings.Contains(strings.ToLower(cur), strings.ToLower(name)):
		h.Set(key, cur+", "+name)
	}
}

// isHTTPS reports whether the request arrived over TLS, directly or through a
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// matchesPrefix reports whether path is one of prefixes or lies below one on
// a segment boundary ("/api/v1" covers "/api/v1/users", not "/api/v10").
// An empty list matches every path.
func matchesPrefix(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" || path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

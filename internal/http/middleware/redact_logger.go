// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger installed by the
// router. Request bodies are never logged. Query strings and header values
// are pattern-scrubbed (UUIDs, emails, phone numbers) and credential-like
// headers are masked whole. The caller identity header X-User-ID is one of
// them; the resolved user eid is logged separately as user_id.
//
// Before the handler runs it attaches the request-scoped logger returned by
// LoggerFrom, so handler and dispatcher logs share request_id, method and
// path with the access log line.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const masked = "[REDACTED]"

// Scrub patterns, applied in this order. UUIDs go first so the phone pattern
// cannot eat their digit groups; the phone pattern is digits-only for the
// same reason.
var scrubbers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// defaultMaskedHeaders are always masked whole (lower-case).
var defaultMaskedHeaders = []string{"authorization", "cookie", "set-cookie", "x-user-id"}

// RedactOptions configures RedactingLogger.
//
// MaskHeaders adds header names (case-insensitive) whose values are replaced
// by "[REDACTED]" on top of Authorization, Cookie, Set-Cookie and X-User-ID.
type RedactOptions struct {
	MaskHeaders []string
}

// redactor scrubs strings and header sets for logging.
type redactor struct {
	mask map[string]struct{}
}

func newRedactor(extra []string) redactor {
	r := redactor{mask: make(map[string]struct{}, len(defaultMaskedHeaders)+len(extra))}
	for _, h := range append(append([]string(nil), defaultMaskedHeaders...), extra...) {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.mask[h] = struct{}{}
		}
	}
	return r
}

func (r redactor) scrub(s string) string {
	for _, sc := range scrubbers {
		if s == "" {
			break
		}
		s = sc.re.ReplaceAllString(s, sc.repl)
	}
	return s
}

// headers renders h for the access log. X-Request-ID is left out; the
// effective id is logged once as request_id.
func (r redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if strings.EqualFold(k, requestIDHeader) {
			continue
		}
		if _, ok := r.mask[strings.ToLower(k)]; ok {
			out[k] = masked
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger logs one "http_request" line per request: info below 400,
// warn for 4xx, error for 5xx.
//
// The request id is taken from the response header set by RequestID, falling
// back to the incoming X-Request-ID.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	red := newRedactor(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}
		query := red.scrub(truncate(c.Request.URL.RawQuery, maxQueryLogLength))
		headers := red.headers(c.Request.Header)

		scoped := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)

		c.Next()

		status := c.Writer.Status()
		accessEvent(&scoped, status).
			Str("user_id", asString(c.Value(userIDKey))).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}

func accessEvent(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRedactor_scrub(t *testing.T) {
	red := newRedactor(nil)
	cases := map[string]string{
		"":                                        "",
		"plain text":                              "plain text",
		"ada@example.com":                         "[REDACTED:email]",
		"id=123e4567-e89b-12d3-a456-426614174000": "id=[REDACTED:id]",
		"call 555-123-4567":                       "call [REDACTED:phone]",
		"9f2c4e1a0b7d3c58":                        "9f2c4e1a0b7d3c58",
	}
	for in, want := range cases {
		assert.Equal(t, want, red.scrub(in), "input %q", in)
	}
}

func TestRedactor_headers(t *testing.T) {
	red := newRedactor([]string{" X-Api-Key ", ""})
	h := http.Header{}
	h.Set("Authorization", "Bearer x")
	h.Set("X-User-ID", "9f2c4e1a0b7d3c58")
	h.Set("X-Api-Key", "k")
	h.Add("Accept", "text/plain")
	h.Add("Accept", "application/json")
	h.Set(requestIDHeader, "rid-1")

	got := red.headers(h)
	assert.Equal(t, masked, got["Authorization"])
	assert.Equal(t, masked, got["X-User-Id"])
	assert.Equal(t, masked, got["X-Api-Key"])
	assert.Equal(t, "text/plain, application/json", got["Accept"])
	assert.NotContains(t, got, "X-Request-Id", "request id is logged as request_id only")
	assert.NotContains(t, red.mask, "")
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLog(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/users/:id", func(c *gin.Context) {
		c.Set(userIDKey, "0123456789abcdef")
		LoggerFrom(c).Info().Msg("inside")
		c.String(http.StatusOK, "ok")
	})

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/users/123?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-User-ID", "0123456789abcdef")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set(requestIDHeader, "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"request_id":"rid-resp","method":"GET","path":"/users/:id","message":"inside"`,
		`"user_id":"0123456789abcdef"`,
		`"message":"http_request"`,
		`[REDACTED:email]`,
		`[REDACTED:phone]`,
		`[REDACTED:id]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-User-Id":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`,
	} {
		assert.Contains(t, logs, want)
	}
	assert.NotContains(t, logs, "rid-req", "the response id wins and the incoming header is not dumped")
	assert.NotContains(t, logs, "topsecret")
	assert.NotContains(t, logs, "a.b+tag@example.com")
}

func TestRedactingLogger_LevelsAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	cases := []struct {
		path, rid, level string
	}{
		{"/warn", "rid-warn", "warn"},
		{"/error", "rid-err", "error"},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			buf := captureLog(t)
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set(requestIDHeader, tc.rid)
			r.ServeHTTP(httptest.NewRecorder(), req)

			logs := buf.String()
			assert.Contains(t, logs, `"level":"`+tc.level+`"`)
			assert.Contains(t, logs, `"request_id":"`+tc.rid+`"`)
			assert.Contains(t, logs, `"path":"`+tc.path+`"`)
		})
	}
}

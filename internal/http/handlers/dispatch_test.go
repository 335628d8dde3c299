package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tbourn/go-api-base/internal/apperr"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// serve runs h behind the dispatcher and returns the recorded response.
func serve(t *testing.T, verbose bool, h HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := NewDispatcher(NewRenderer(DefaultPresenters()), verbose)
	r := gin.New()
	r.Use(d.Recover())
	r.GET("/x", d.Wrap(h))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func returning(err error) HandlerFunc {
	return func(*gin.Context) error { return err }
}

func errorEntries(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	raw, ok := decode(t, w)["errors"].([]any)
	require.True(t, ok, "expected errors list in %s", w.Body.String())
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		m, _ := e.(map[string]any)
		out = append(out, m)
	}
	return out
}

func TestDispatch_Taxonomy(t *testing.T) {
	_ = captureLogger(t)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
		field   string
	}{
		{"authorization", apperr.Authorization("No access"), http.StatusForbidden, "No access", ""},
		{"authentication", apperr.Authentication("Authentication required"), http.StatusForbidden, "Authentication required", ""},
		{"not found", apperr.NotFound("Nope"), http.StatusNotFound, "Nope", ""},
		{"app with field", apperr.App("App Fail", "app_field"), http.StatusBadRequest, "App Fail", "app_field"},
		{"app without field", apperr.App("App Fail", ""), http.StatusBadRequest, "App Fail", ""},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "record not found", ""},
		{"wrapped kind", fmt.Errorf("update: %w", apperr.Authorization("No access")), http.StatusForbidden, "No access", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, true, returning(tc.err))
			assert.Equal(t, tc.status, w.Code)

			entries := errorEntries(t, w)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.message, entries[0]["message"])
			if tc.field != "" {
				assert.Equal(t, tc.field, entries[0]["field"])
			} else {
				_, has := entries[0]["field"]
				assert.False(t, has)
			}
			_, hasDebug := decode(t, w)["debug"]
			assert.False(t, hasDebug, "only internal errors carry debug")
		})
	}
}

func TestDispatch_ValidationFlattensFields(t *testing.T) {
	var ve apperr.ValidationError
	ve.Add("email", "is invalid")
	ve.Add("timezone", "is not a valid timezone")
	ve.Add("timezone", "can't be blank")

	w := serve(t, false, returning(&ve))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries := errorEntries(t, w)
	require.Len(t, entries, 3)
	assert.Equal(t, map[string]any{"message": "is invalid", "field": "email"}, entries[0])
	assert.Equal(t, map[string]any{"message": "is not a valid timezone", "field": "timezone"}, entries[1])
	assert.Equal(t, map[string]any{"message": "can't be blank", "field": "timezone"}, entries[2])
}

func TestDispatch_InternalNonVerboseHidesDetail(t *testing.T) {
	buf := captureLogger(t)
	w := serve(t, false, returning(errors.New("secret: dsn=postgres://root@db")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	_, hasDebug := body["debug"]
	assert.False(t, hasDebug)
	assert.Equal(t, []any{map[string]any{"message": "Internal Server Error"}}, body["errors"])
	assert.NotContains(t, w.Body.String(), "secret")

	logs := buf.String()
	assert.Contains(t, logs, `"level":"error"`)
	assert.Contains(t, logs, `"message":"api error"`)
	assert.Contains(t, logs, "secret", "the log keeps the detail")
}

func TestDispatch_InternalVerboseWithoutStack(t *testing.T) {
	_ = captureLogger(t)
	w := serve(t, true, returning(errors.New("boom")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{map[string]any{"message": "Internal Server Error"}}, body["errors"])

	dbg, _ := body["debug"].(map[string]any)
	require.NotNil(t, dbg)
	assert.Equal(t, "boom", dbg["message"])
	assert.Equal(t, "Unknown", dbg["file"])
	assert.Equal(t, float64(0), dbg["line"])
	assert.Equal(t, "*errors.errorString", dbg["exception_type"])
	assert.Equal(t, []any{}, dbg["trace"])
}

func TestDispatch_InternalVerboseWithStack(t *testing.T) {
	_ = captureLogger(t)
	cause := errors.New("disk full")
	w := serve(t, true, returning(pkgerrors.Wrap(cause, "save")))

	dbg, _ := decode(t, w)["debug"].(map[string]any)
	require.NotNil(t, dbg)
	assert.Equal(t, "save: disk full", dbg["message"])
	assert.True(t, strings.HasSuffix(dbg["file"].(string), "dispatch_test.go"), "file = %v", dbg["file"])
	assert.Greater(t, dbg["line"].(float64), float64(0))
	assert.Equal(t, "*errors.errorString", dbg["exception_type"], "type of the root cause")
	trace, _ := dbg["trace"].([]any)
	assert.NotEmpty(t, trace)
}

func TestDispatch_PanicRendersThroughDispatcher(t *testing.T) {
	_ = captureLogger(t)
	w := serve(t, true, func(*gin.Context) error {
		panic("kaboom")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{map[string]any{"message": "Internal Server Error"}}, body["errors"])

	dbg, _ := body["debug"].(map[string]any)
	require.NotNil(t, dbg)
	assert.Equal(t, "panic: kaboom", dbg["message"])
	trace, _ := dbg["trace"].([]any)
	require.NotEmpty(t, trace)
	assert.Contains(t, trace[0], "dispatch_test.go", "trace starts at the panicking function")
	for _, fr := range trace {
		assert.NotContains(t, fr, "runtime.gopanic")
	}
}

func TestDispatch_DoubleRenderKeepsFirstBody(t *testing.T) {
	buf := captureLogger(t)
	w := serve(t, true, func(c *gin.Context) error {
		r := NewRenderer(nil)
		if err := r.Render(c, Payload{JSON: "first"}); err != nil {
			return err
		}
		return r.Render(c, Payload{JSON: "second"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"results": "first"}, decode(t, w))
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), ErrDoubleRender.Error())
}

func TestDispatch_NilErrorIsIgnored(t *testing.T) {
	c, w := newTestContext()
	NewDispatcher(NewRenderer(nil), false).Handle(c, nil)
	assert.False(t, Rendered(c))
	assert.Empty(t, w.Body.String())
}

func TestSkipPanicFrames_NoPanicFrameKeepsStack(t *testing.T) {
	st := pkgerrors.New("x").(interface{ StackTrace() pkgerrors.StackTrace }).StackTrace()
	assert.Equal(t, len(st), len(skipPanicFrames(st)))
	assert.Equal(t, "github.com/tbourn/go-api-base/internal/http/handlers.TestSkipPanicFrames_NoPanicFrameKeepsStack", frameFunc(st[0]))
}

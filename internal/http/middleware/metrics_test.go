package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/users/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.GET("/statusonly", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// Baselines; other tests share the default registry.
	baseRoute := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/users/:id", "200"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404"))
	baseNoBody := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/statusonly", "204"))

	for _, p := range []string{"/users/0123456789abcdef", "/users/fedcba9876543210"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	for _, p := range []string{"/nope", "/also/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/statusonly", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, baseRoute+2, testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/users/:id", "200")),
		"eids collapse into the route template")
	assert.Equal(t, baseMiss+2, testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedPath, "404")),
		"unmatched paths share one label")
	assert.Equal(t, baseNoBody+1, testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/statusonly", "204")))
	assert.Zero(t, testutil.ToFloat64(httpInflight))
	assert.Positive(t, testutil.CollectAndCount(httpLat))
}

func TestObserveError_CountsByKind(t *testing.T) {
	base := testutil.ToFloat64(apiErrs.WithLabelValues("not_found"))
	ObserveError("not_found")
	ObserveError("not_found")
	assert.Equal(t, base+2, testutil.ToFloat64(apiErrs.WithLabelValues("not_found")))
}

package apiutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	matched := metrics.HTTPRequestsTotal.WithLabelValues("/api/users/:id", http.MethodGet, "200")
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(UnmatchedRoute, http.MethodGet, "404")
	beforeMatched := testutil.ToFloat64(matched)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	for _, path := range []string{"/api/users/1", "/api/users/2", "/wp-admin/a", "/.env", "/x/y/z"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
	}

	assert.Equal(t, beforeMatched+2, testutil.ToFloat64(matched))
	assert.Equal(t, beforeUnmatched+3, testutil.ToFloat64(unmatched))
	assert.Zero(t, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("/wp-admin/a", http.MethodGet, "404")))
}

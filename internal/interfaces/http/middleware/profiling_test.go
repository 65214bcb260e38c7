package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequestContext(t *testing.T) {
	router := gin.New()
	router.Use(Profiling(true, "/health"))

	var route, method string
	router.POST("/api/v1/stock-takes/:id/finalize", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), "route")
		method, _ = pprof.Label(c.Request.Context(), "method")
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/stock-takes/7/finalize", nil))

	assert.Equal(t, "/api/v1/stock-takes/:id/finalize", route)
	assert.Equal(t, "POST", method)
}

func TestProfiling_SkipsAndDisabled(t *testing.T) {
	for name, mw := range map[string]gin.HandlerFunc{
		"skip path": Profiling(true, "/health"),
		"disabled":  Profiling(false),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(mw)
			labelled := true
			router.GET("/health", func(c *gin.Context) {
				_, labelled = pprof.Label(c.Request.Context(), "route")
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, labelled)
		})
	}
}

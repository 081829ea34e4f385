package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupKeyRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", DeviceAPIKey(key), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestDeviceAPIKey(t *testing.T) {
	router := setupKeyRouter("secret-key")

	testCases := []struct {
		name     string
		header   string
		value    string
		expected int
	}{
		{"valid X-API-Key", "X-API-Key", "secret-key", http.StatusOK},
		{"valid Api-Key", "Api-Key", "secret-key", http.StatusOK},
		{"valid bearer token", "Authorization", "Bearer secret-key", http.StatusOK},
		{"wrong key", "X-API-Key", "not-the-key", http.StatusUnauthorized},
		{"missing key", "", "", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expected, w.Code)
		})
	}
}

// An empty configured key must never authenticate anything, even an empty
// presented key.
func TestDeviceAPIKeyUnconfigured(t *testing.T) {
	router := setupKeyRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", "")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func runCORS(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, "/api/v1/bookings", nil)
	if origin != "" {
		c.Request.Header.Set("Origin", origin)
	}
	CORS(origins)(c)
	return recorder
}

func TestCORSEmptyAllowlistOpensAllOrigins(t *testing.T) {
	resp := runCORS(t, nil, http.MethodGet, "https://anywhere.example.com")
	require.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowlistedOriginEchoed(t *testing.T) {
	origins := []string{"https://dashboard.example.com"}

	resp := runCORS(t, origins, http.MethodGet, "https://dashboard.example.com")
	require.Equal(t, "https://dashboard.example.com", resp.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", resp.Header().Get("Vary"))

	resp = runCORS(t, origins, http.MethodGet, "https://evil.example.com")
	require.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	resp := runCORS(t, nil, http.MethodOptions, "https://dashboard.example.com")
	require.Equal(t, http.StatusNoContent, resp.Code)
}

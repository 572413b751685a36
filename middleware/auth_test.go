package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/follow-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Metrics(), AuthMiddleware("secret"))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": utils.GetUser(c).UserID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine()
	valid, err := utils.GenerateAccessToken(7, "secret", time.Minute)
	require.NoError(t, err)
	foreign, err := utils.GenerateAccessToken(7, "other", time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"no scheme", valid, http.StatusUnauthorized},
		{"foreign secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.want, w.Code, tc.name)
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader), tc.name)
	}
}

func TestRequestIDKeepsValidCallerID(t *testing.T) {
	r := newEngine()
	id := "5f0c6a5e-8a57-4f35-9d2f-1b2b3c4d5e6f"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, id)
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(RequestIDHeader))
}

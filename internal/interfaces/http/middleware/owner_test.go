package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
)

const testSecret = "test-secret-key-at-least-32-chars"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newOwnerRouter(cfg OwnerConfig) *gin.Engine {
	router := gin.New()
	router.Use(Owner(cfg))
	router.GET("/api/v1/invoice", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"owner":     GetOwnerID(c),
			"ctx_owner": logger.GetOwnerID(c.Request.Context()),
		})
	})
	router.GET("/api/v1/system/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return *resp.Error
}

func TestOwner_Header(t *testing.T) {
	router := newOwnerRouter(DefaultOwnerConfig("", ""))

	t.Run("uses X-User-ID without a secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoice", nil)
		req.Header.Set(OwnerHeaderKey, " user-1 ")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"owner":"user-1","ctx_owner":"user-1"}`, w.Body.String())
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoice", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeError(t, w).Code)
	})

	t.Run("overlong owner is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoice", nil)
		req.Header.Set(OwnerHeaderKey, strings.Repeat("x", MaxOwnerIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid owner identity", decodeError(t, w).Message)
	})

	t.Run("skips system routes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOwner_Token(t *testing.T) {
	router := newOwnerRouter(DefaultOwnerConfig(testSecret, "invoicer"))
	valid := jwt.RegisteredClaims{
		Subject:   "user-42",
		Issuer:    "invoicer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("owner is the subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoice", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+signToken(t, testSecret, valid))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"owner":"user-42","ctx_owner":"user-42"}`, w.Body.String())
	})

	t.Run("header is ignored when a secret is set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoice", nil)
		req.Header.Set(OwnerHeaderKey, "user-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	tests := []struct {
		name   string
		header func(t *testing.T) string
		code   string
	}{
		{
			name: "expired token",
			header: func(t *testing.T) string {
				claims := valid
				claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				return BearerPrefix + signToken(t, testSecret, claims)
			},
			code: dto.ErrCodeTokenExpired,
		},
		{
			name: "wrong secret",
			header: func(t *testing.T) string {
				return BearerPrefix + signToken(t, "another-secret-key-of-32-chars!!", valid)
			},
			code: dto.ErrCodeTokenInvalid,
		},
		{
			name: "wrong issuer",
			header: func(t *testing.T) string {
				claims := valid
				claims.Issuer = "someone-else"
				return BearerPrefix + signToken(t, testSecret, claims)
			},
			code: dto.ErrCodeTokenInvalid,
		},
		{
			name: "missing expiry",
			header: func(t *testing.T) string {
				claims := valid
				claims.ExpiresAt = nil
				return BearerPrefix + signToken(t, testSecret, claims)
			},
			code: dto.ErrCodeTokenInvalid,
		},
		{
			name:   "not a bearer token",
			header: func(*testing.T) string { return "Basic dXNlcjpwYXNz" },
			code:   dto.ErrCodeTokenInvalid,
		},
		{
			name: "empty subject",
			header: func(t *testing.T) string {
				claims := valid
				claims.Subject = ""
				return BearerPrefix + signToken(t, testSecret, claims)
			},
			code: dto.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/invoice", nil)
			req.Header.Set(AuthHeaderKey, tt.header(t))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	claims middleware.SessionClaims
	err    error
}

func (v *stubVerifier) VerifySessionClaims(token string) (middleware.SessionClaims, error) {
	if v.err != nil {
		return middleware.SessionClaims{}, v.err
	}
	return v.claims, nil
}

func authTestRouter(verifier middleware.SessionVerifier, managerOnly bool) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{middleware.AuthMiddleware(verifier)}
	if managerOnly {
		handlers = append(handlers, middleware.ManagerOnly())
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	verifier := &stubVerifier{claims: middleware.SessionClaims{UserID: "u-1", Email: "u@example.com"}}

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		authTestRouter(verifier, false).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		bad := &stubVerifier{err: autherrors.ErrInvalidToken}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer nope")
		authTestRouter(bad, false).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		authTestRouter(verifier, false).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "u-1")
	})

	t.Run("cookie fallback", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "good-token"})
		authTestRouter(verifier, false).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestManagerOnly(t *testing.T) {
	t.Run("employee session is refused", func(t *testing.T) {
		verifier := &stubVerifier{claims: middleware.SessionClaims{UserID: "u-1"}}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		authTestRouter(verifier, true).ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager session passes", func(t *testing.T) {
		verifier := &stubVerifier{claims: middleware.SessionClaims{UserID: "m-1", IsManager: true}}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		authTestRouter(verifier, true).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.GET("/limited", middleware.RateLimitByIP(rate.Limit(1), 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	// Burst of one; the immediate follow-up is rejected.
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRateLimitByUser(t *testing.T) {
	t.Run("unauthenticated requests pass through", func(t *testing.T) {
		r := gin.New()
		r.GET("/limited", middleware.RateLimitByUser(rate.Limit(1), 1), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("authenticated user exhausts the burst", func(t *testing.T) {
		r := gin.New()
		setUser := func(c *gin.Context) { c.Set("user_id", "u-1") }
		r.GET("/limited", setUser, middleware.RateLimitByUser(rate.Limit(1), 1), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		first := httptest.NewRecorder()
		r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/limited", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/limited", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})
}

package middleware

import (
	"net/http"
	"strings"

	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/shared/apperror"
	"github.com/kirankattii/Leave-approval/internal/shared/contextutil"
	"github.com/kirankattii/Leave-approval/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// SessionClaims is the identity the auth middleware attaches to a request.
type SessionClaims struct {
	UserID    string
	Email     string
	IsManager bool
}

// SessionVerifier validates a bearer token and returns the claims inside.
// The credential layer implements it; keeping the interface here lets the
// feature packages register routes without importing each other.
type SessionVerifier interface {
	VerifySessionClaims(token string) (SessionClaims, error)
}

// AuthMiddleware accepts the token from the Authorization header or the
// access_token cookie, in that order.
func AuthMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			c.Abort()
			return
		}

		claims, err := verifier.VerifySessionClaims(tokenString)
		if err != nil {
			he := apperror.ToHTTP(err)
			response.Error(c, he.Status, he.Code, he.Message, nil)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("is_manager", claims.IsManager)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ManagerOnly rejects requests whose session does not carry the manager
// flag. It must run after AuthMiddleware.
func ManagerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_manager") {
			e := autherrors.ErrManagerRequired
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

package auth

import (
	"errors"
	"time"

	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionClaims is the authenticated identity extracted from a session token.
type SessionClaims struct {
	UserID    string
	Email     string
	IsManager bool
}

// CredentialVerifier owns password hashing and session token issuance.
// The signing secret is injected at construction; nothing here reads the
// environment.
type CredentialVerifier struct {
	secret     []byte
	sessionTTL time.Duration
}

func NewCredentialVerifier(secret string, sessionTTL time.Duration) *CredentialVerifier {
	return &CredentialVerifier{secret: []byte(secret), sessionTTL: sessionTTL}
}

func (v *CredentialVerifier) SessionTTL() time.Duration {
	return v.sessionTTL
}

func (v *CredentialVerifier) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (v *CredentialVerifier) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (v *CredentialVerifier) IssueSession(userID, email string, isManager bool, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = v.sessionTTL
	}
	claims := jwt.MapClaims{
		"sub":        userID,
		"email":      email,
		"is_manager": isManager,
		"exp":        time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// VerifySessionClaims satisfies the HTTP auth middleware's verifier
// contract.
func (v *CredentialVerifier) VerifySessionClaims(tokenString string) (middleware.SessionClaims, error) {
	claims, err := v.VerifySession(tokenString)
	if err != nil {
		return middleware.SessionClaims{}, err
	}
	return middleware.SessionClaims(claims), nil
}

// VerifySession fails closed: any signature, shape, or expiry problem
// yields an unauthenticated error, never a partial claim set.
func (v *CredentialVerifier) VerifySession(tokenString string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, autherrors.ErrTokenExpired
		}
		return SessionClaims{}, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return SessionClaims{}, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, autherrors.ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return SessionClaims{}, autherrors.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	isManager, _ := claims["is_manager"].(bool)

	return SessionClaims{
		UserID:    userID,
		Email:     email,
		IsManager: isManager,
	}, nil
}

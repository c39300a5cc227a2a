package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "stockwise/internal/errors"
)

const (
	operatorIDKey   = "operatorID"
	operatorNameKey = "operatorName"
	tokenIssuer     = "stockwise-api"
)

// OperatorClaims are the claims of an operator access token.
type OperatorClaims struct {
	OperatorID string `json:"operator_id"`
	Name       string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 token for operatorID valid for ttl.
// Operator identities are managed by the inventory system; this only mints
// tokens for them.
func GenerateAccessToken(secret, operatorID, name string, ttl time.Duration) (string, error) {
	if operatorID == "" {
		return "", errors.New("operator id is required")
	}
	now := time.Now()
	claims := &OperatorClaims{
		OperatorID: operatorID,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   operatorID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken validates tokenString and returns its claims.
func ParseAccessToken(secret, tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.OperatorID == "" {
		return nil, errors.New("token has no operator id")
	}
	return claims, nil
}

// AuthMiddleware requires a valid operator bearer token and stores the
// operator's id and name in the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RenderError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			RenderError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ParseAccessToken(secret, parts[1])
		if err != nil {
			RenderError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(operatorIDKey, claims.OperatorID)
		c.Set(operatorNameKey, claims.Name)
		c.Next()
	}
}

// OperatorID returns the authenticated operator, or ErrUnauthorized.
func OperatorID(c *gin.Context) (string, error) {
	id := c.GetString(operatorIDKey)
	if id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// SetOperatorID stores an operator id in the context. Handler tests use it in
// place of a signed token.
func SetOperatorID(c *gin.Context, operatorID string) {
	c.Set(operatorIDKey, operatorID)
}

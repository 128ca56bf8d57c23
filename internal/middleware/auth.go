package middleware

import (
	"context"
	"net/http"
	"strings"

	"floreria/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"
	// TokenKey holds the raw bearer token of the request.
	TokenKey = "token"
)

// Token types carried in the "typ" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

const (
	msgAuthRequired = "Autenticacion requerida"
	msgInvalidToken = "Token invalido o expirado"
	msgForbidden    = "No tienes permisos para realizar esta acción"
)

// JWTClaims are the custom claims embedded in every token. The registered ID
// (jti) is what the logout blacklist stores.
type JWTClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Blacklist reports revoked token ids. service.TokenBlacklist implements it.
type Blacklist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(tokenStr, secret string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWTAuth validates the Bearer access token on every protected route. A nil
// blacklist skips the revocation check.
func JWTAuth(secret string, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(msgAuthRequired))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := ParseToken(tokenStr, secret)
		if err != nil || claims.TokenType != TokenAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(msgInvalidToken))
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open on redis errors
				log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("auth: blacklist check failed")
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(msgInvalidToken))
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(TokenKey, tokenStr)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New(msgForbidden))
			return
		}
		c.Next()
	}
}

// GetClaims returns the typed claims of the request, or nil on public routes.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}

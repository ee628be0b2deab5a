// Package middleware는 HTTP 미들웨어를 제공합니다.
// 이 파일은 JWT 인증 미들웨어를 포함합니다.
package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldops-service/internal/response"
)

// Gin 컨텍스트 키
const (
	UserIDContextKey = "user_id"
	TokenContextKey  = "jwtToken"
)

// userIDClaims are the claims checked, in order, for the staff user id
var userIDClaims = []string{"sub", "userId", "user_id", "uid"}

// Auth는 HMAC 서명된 JWT를 로컬에서 검증하는 미들웨어입니다.
func Auth(jwtSecret string) gin.HandlerFunc {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	}

	return func(c *gin.Context) {
		tokenString, ok := ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, keyFunc)
		if err != nil || !token.Valid {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		userID, err := userIDFromClaims(token.Claims)
		if err != nil {
			response.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Set(TokenContextKey, tokenString)
		c.Next()
	}
}

// JWTParser는 검증 없이 JWT를 파싱하여 user_id만 추출합니다.
// ⚠️ Istio RequestAuthentication이 이미 서명을 검증한 경우에만 사용해야 합니다.
type JWTParser struct {
	logger *zap.Logger
}

// NewJWTParser는 새 JWTParser를 생성합니다.
func NewJWTParser(logger *zap.Logger) *JWTParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTParser{logger: logger}
}

// ParseToken extracts the user id without verifying the signature
func (p *JWTParser) ParseToken(tokenString string) (uuid.UUID, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		p.logger.Debug("Failed to parse JWT token", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return userIDFromClaims(token.Claims)
}

// IstioAuthMiddleware는 Istio JWT 모드용 미들웨어입니다.
// 파싱만 수행하고 서명 검증은 메시에 맡깁니다.
func IstioAuthMiddleware(parser *JWTParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		userID, err := parser.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Failed to parse token")
			c.Abort()
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Set(TokenContextKey, tokenString)
		c.Next()
	}
}

func userIDFromClaims(claims jwt.Claims) (uuid.UUID, error) {
	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	for _, key := range userIDClaims {
		raw, ok := mapClaims[key].(string)
		if !ok || raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid user_id format: %w", err)
		}
		return id, nil
	}
	return uuid.Nil, errors.New("user_id not found in claims")
}

// ExtractBearerToken은 Authorization 헤더에서 Bearer 토큰을 추출합니다.
func ExtractBearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID는 컨텍스트에서 사용자 ID를 추출합니다.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDContextKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"recipema/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// context key
const (
	ContextUserKey = "auth_user"
)

// AuthUser 認證後的使用者資訊
type AuthUser struct {
	ID        string
	IsPremium bool
}

// userClaims JWT 載荷
type userClaims struct {
	IsPremium bool `json:"is_premium"`
	jwt.RegisteredClaims
}

// anonymousUser 未帶 token 時的匿名身分
var anonymousUser = AuthUser{ID: "anonymous", IsPremium: false}

// Auth 認證中間件。
// 允許匿名存取（沒有 Authorization 或 "Bearer anonymous" 時給匿名身分），
// 帶了 token 就必須驗過。premium 身分只往 context 傳遞，不在後端做功能閘控。
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" || authHeader == "Bearer anonymous" {
			c.Set(ContextUserKey, anonymousUser)
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		if jwtSecret == "" {
			common.LogError("JWT secret not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Authentication not configured",
			})
			return
		}

		claims := &userClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})

		if err != nil || !parsed.Valid {
			status := http.StatusUnauthorized
			message := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token expired"
			}
			common.LogWarn("認證失敗",
				zap.Error(err),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(ContextUserKey, AuthUser{
			ID:        claims.Subject,
			IsPremium: claims.IsPremium,
		})
		c.Next()
	}
}

// CurrentUser 取出認證後的使用者，取不到時回匿名身分
func CurrentUser(c *gin.Context) AuthUser {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(AuthUser); ok {
			return user
		}
	}
	return anonymousUser
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/rbyers87/offduty7/internal/constants"
	"github.com/rbyers87/offduty7/internal/model"
)

// AuthMiddleware 登录校验
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		// 检查请求路径是否需要跳过登录检测
		path := c.Request.URL.Path
		if path == "/" ||
			path == "/favicon.ico" ||
			strings.HasPrefix(path, "/auth/") ||
			strings.HasPrefix(path, "/storage/") {
			c.Next()
			return
		}

		claims, err := parseClaims(c, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			c.Abort()
			return
		}

		// 设置信息传递，后面才能从ctx中获取到用户信息
		c.Set(constants.JwtUserID, claims[constants.JwtUserID])
		c.Set(constants.JwtUserName, claims[constants.JwtUserName])
		c.Set(constants.JwtUserRole, claims[constants.JwtUserRole])
		c.Next()
	}
}

// RequireAdmin 检查用户是否为管理员的中间件
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(constants.JwtUserRole)
		if role != model.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetLoginUser 获取当前登录用户ID及其角色
func GetLoginUser(c *gin.Context) (string, string) {
	return c.GetString(constants.JwtUserID), c.GetString(constants.JwtUserRole)
}

func parseClaims(c *gin.Context, secret []byte) (jwt.MapClaims, error) {
	tokenStr := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if tokenStr == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

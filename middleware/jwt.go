package middleware

import (
	"net/http"
	"strings"

	"prism-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JwtAuthMiddleware: batas identitas satu-satunya. Lolos dari sini berarti
// request punya user id stabil dari identity provider (atau login lokal).
// Tanpa token = 401, SEBELUM ada kerja kuota/store apa pun.
func JwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return utils.ApiSecret(), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		// Subject = user id opaque (string), BUKAN uint. Identity provider
		// eksternal kasih id bebas format, jangan dipaksa numerik.
		sub, okSub := claims["sub"].(string)
		if !okSub || sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token corrupt (sub)"})
			c.Abort()
			return
		}

		// KONSISTENSI KEY: "user_id" (snake_case) di seluruh aplikasi
		c.Set("user_id", sub)
		if email, ok := claims["email"].(string); ok {
			c.Set("email", email)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}
		c.Next()
	}
}

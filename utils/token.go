package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ApiSecret dipakai middleware untuk verifikasi dan di sini untuk sign.
func ApiSecret() []byte {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		secret = "prism_dev_secret" // fallback dev; production WAJIB set env
	}
	return []byte(secret)
}

// GenerateToken terbitkan JWT dengan subject = user id (string opaque),
// format yang sama dengan token dari identity provider eksternal.
func GenerateToken(userID, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ApiSecret())
}

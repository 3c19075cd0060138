package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"time"

	"prism-backend/database"
	"prism-backend/models"
	"prism-backend/quota"
	"prism-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Auth lokal: fallback untuk deployment self-hosted tanpa identity provider
// eksternal. Token yang diterbitkan bentuknya sama (sub = user id string),
// jadi seluruh handler lain tidak peduli dari mana identitasnya.

type RegisterInput struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func newLocalUserID() string {
	b := make([]byte, 12)
	rand.Read(b)
	return "local_" + hex.EncodeToString(b)
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration data", "details": err.Error()})
		return
	}

	// 1. Cek konfirmasi password
	if input.Password != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password confirmation does not match"})
		return
	}

	// 2. Hash password
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)

	// 3. Role admin dari env, bukan secret hardcode
	role := "user"
	if admin := os.Getenv("ADMIN_EMAIL"); admin != "" && admin == input.Email {
		role = "admin"
	}

	newUser := models.User{
		ID:               newLocalUserID(),
		Email:            input.Email,
		Password:         string(hashedPassword),
		Role:             role,
		ReferralCode:     utils.GenerateReferralCode(),
		NeuralEnergy:     quota.EnergyMax,
		LastEnergyRefill: time.Now(),
	}

	if err := database.DB.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	token, err := utils.GenerateToken(newUser.ID, newUser.Email, newUser.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":            newUser.ID,
			"email":         newUser.Email,
			"role":          newUser.Role,
			"referral_code": newUser.ReferralCode,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login data", "details": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"role":          user.Role,
			"is_pro":        user.IsPro,
			"referral_code": user.ReferralCode,
		},
	})
}

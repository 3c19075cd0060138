package handlers

import (
	"errors"
	"time"

	"prism-backend/database"
	"prism-backend/gemini"
	"prism-backend/models"
	"prism-backend/quota"
	"prism-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dicolok sekali dari main.go (atau dari test dengan fake).
var (
	Ledger quota.Ledger
	AI     gemini.Service
)

// Helper: Ambil UserID (string opaque) dari Token
func getUserID(c *gin.Context) string {
	id, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	return id.(string)
}

func getEmail(c *gin.Context) string {
	email, exists := c.Get("email")
	if !exists {
		return ""
	}
	return email.(string)
}

// Helper: Cek Admin (role dari claim token)
func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	return exists && role == "admin"
}

// getOrCreateUser: upsert idempoten dengan kunci id. Request pertama yang
// konkuren aman: ON CONFLICT DO NOTHING lalu baca ulang.
func getOrCreateUser(userID, email string) (models.User, error) {
	var user models.User
	err := database.DB.First(&user, "id = ?", userID).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	if email == "" {
		email = userID + "@placeholder.com"
	}
	user = models.User{
		ID:               userID,
		Email:            email,
		Role:             "user",
		ReferralCode:     utils.GenerateReferralCode(),
		NeuralEnergy:     quota.EnergyMax,
		LastEnergyRefill: time.Now(),
	}
	if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		return models.User{}, err
	}
	// Baca balik: bisa saja row-nya punya request paralel yang menang duluan
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

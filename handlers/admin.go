package handlers

import (
	"net/http"

	"prism-backend/database"
	"prism-backend/models"

	"github.com/gin-gonic/gin"
)

// 1. LIST USER + keadaan ledger kuota mereka
func GetAllUsers(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var users []models.User
	database.DB.
		Select("id, email, role, is_pro, referral_code, daily_messages_used, last_message_date, neural_energy, created_at").
		Order("created_at desc").
		Find(&users)

	c.JSON(http.StatusOK, gin.H{"data": users})
}

// 2. PATCH /api/admin/users/:id/pro — override manual status pro
// (normalnya webhook billing yang pegang; ini buat support/ops)
func SetUserProStatus(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	id := c.Param("id")
	var input struct {
		IsPro *bool `json:"is_pro" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_pro required"})
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", id).Update("is_pro", *input.IsPro)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

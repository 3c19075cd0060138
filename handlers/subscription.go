package handlers

import (
	"net/http"

	"prism-backend/database"
	"prism-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// GET /api/subscription — status langganan buat frontend. Fail soft.
func GetSubscription(c *gin.Context) {
	userID := getUserID(c)

	user, err := getOrCreateUser(userID, getEmail(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to fetch subscription", "is_pro": false})
		return
	}

	var sub models.Subscription
	status := models.SubInactive
	if err := database.DB.Where("user_id = ?", userID).First(&sub).Error; err == nil {
		status = sub.Status
	}

	c.JSON(http.StatusOK, gin.H{
		"is_pro": user.IsPro,
		"status": status,
	})
}

// POST /api/subscription/register — catat id customer/subscription dari
// checkout flow, supaya webhook billing nanti bisa menemukan user-nya.
// Lifecycle order/pembayaran sendiri urusan gateway, bukan kita.
func RegisterSubscription(c *gin.Context) {
	userID := getUserID(c)

	var input struct {
		CustomerID     string `json:"customer_id" binding:"required"`
		SubscriptionID string `json:"subscription_id"`
		PlanID         string `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer ID required"})
		return
	}

	if _, err := getOrCreateUser(userID, getEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get/create user"})
		return
	}

	sub := models.Subscription{
		UserID:                 userID,
		ExternalCustomerID:     input.CustomerID,
		ExternalSubscriptionID: input.SubscriptionID,
		PlanID:                 input.PlanID,
		Status:                 models.SubInactive,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_customer_id", "external_subscription_id", "plan_id", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

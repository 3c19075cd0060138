package handlers

import (
	"net/http"
	"strings"

	"prism-backend/quota"

	"github.com/gin-gonic/gin"
)

// POST /api/doubt — generator analogi sekali jalan. Tanpa session, tanpa
// notebook: murni konsumsi kuota + satu panggilan model non-stream.
func ResolveDoubt(c *gin.Context) {
	userID := getUserID(c)

	var input struct {
		SelectedText string `json:"selected_text"`
		Context      string `json:"context"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Validasi DULUAN, sebelum kuota disentuh
	if strings.TrimSpace(input.SelectedText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text selected"})
		return
	}

	if _, err := getOrCreateUser(userID, getEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get/create user"})
		return
	}

	// Doubt lebih murah dari turn penuh (1 unit vs 2)
	decision, err := Ledger.CheckAndConsume(userID, quota.DoubtCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota check failed"})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "Daily Limit Reached",
			"reason": decision.Reason,
		})
		return
	}

	explanation, err := AI.ResolveDoubt(c.Request.Context(), input.SelectedText, input.Context)
	if err != nil {
		// Tidak ada state parsial yang perlu dibereskan; caller boleh retry
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve doubt", "retryable": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"explanation": explanation})
}

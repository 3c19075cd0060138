package handlers

import (
	"log"
	"net/http"

	"prism-backend/quota"

	"github.com/gin-gonic/gin"
)

// GET /api/usage — angka buat bar kuota di frontend.
// Gagal baca = balas default yang murah hati, jangan bikin UI mati.
func GetUsage(c *gin.Context) {
	userID := getUserID(c)

	if _, err := getOrCreateUser(userID, getEmail(c)); err != nil {
		log.Printf("usage: gagal upsert user %s: %v", userID, err)
	}

	stats, err := Ledger.Stats(userID)
	if err != nil {
		log.Printf("usage: gagal baca stats user %s: %v", userID, err)
		c.JSON(http.StatusOK, gin.H{
			"error":     "Failed to fetch stats",
			"is_pro":    false,
			"count":     0,
			"limit":     quota.FreeDailyLimit,
			"remaining": quota.FreeDailyLimit,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_pro":    stats.IsPro,
		"count":     stats.Count,
		"limit":     stats.Limit,
		"remaining": stats.Remaining,
	})
}

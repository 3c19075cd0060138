package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// POST /api/notes — ekstraksi catatan manual (re-generate dari satu pesan).
// Jalur normalnya otomatis setelah tiap turn; endpoint ini buat catatan yang
// dulu gagal diekstrak.
func ExtractNotes(c *gin.Context) {
	userID := getUserID(c)
	getOrCreateUser(userID, getEmail(c))

	var input struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(input.Message) == "" {
		c.JSON(http.StatusOK, gin.H{"notes": ""})
		return
	}

	notes, err := AI.ExtractNotes(c.Request.Context(), input.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract notes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

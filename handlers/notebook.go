package handlers

import (
	"net/http"
	"time"

	"prism-backend/database"
	"prism-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// appendNotebookContent: concat "\n\n"+teks dalam SATU update, scoped ke owner.
// Dipakai handler PATCH dan ekstraksi catatan async.
func appendNotebookContent(notebookID uint, userID, text string) error {
	res := database.DB.Exec(
		`UPDATE notebooks SET content = COALESCE(content, '') || ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		"\n\n"+text, time.Now(), notebookID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound // bukan punya user ini / tidak ada
	}
	return nil
}

func replaceNotebookContent(notebookID uint, userID, text string) error {
	res := database.DB.Exec(
		`UPDATE notebooks SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		text, time.Now(), notebookID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// 1. GET /api/notebooks — urut dari yang paling baru di-update
func ListNotebooks(c *gin.Context) {
	userID := getUserID(c)
	getOrCreateUser(userID, getEmail(c))

	var notebooks []models.Notebook
	if err := database.DB.Where("user_id = ?", userID).Order("updated_at desc").Find(&notebooks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notebooks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notebooks": notebooks})
}

// 2. POST /api/notebooks
func CreateNotebook(c *gin.Context) {
	userID := getUserID(c)
	getOrCreateUser(userID, getEmail(c))

	var input struct {
		TopicTitle string `json:"topic_title" binding:"required"`
		Content    string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Topic title is required"})
		return
	}

	notebook := models.Notebook{
		UserID:     userID,
		TopicTitle: input.TopicTitle,
		Content:    input.Content,
	}
	if err := database.DB.Create(&notebook).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notebook"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"notebook": notebook})
}

// 3. GET /api/notebooks/:id — cek kepemilikan wajib, bukan formalitas
func GetNotebook(c *gin.Context) {
	userID := getUserID(c)
	id := c.Param("id")

	var notebook models.Notebook
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&notebook).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notebook not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notebook": notebook})
}

// 4. PATCH /api/notebooks/:id — mode append (default) atau replace
func UpdateNotebook(c *gin.Context) {
	userID := getUserID(c)
	id := c.Param("id")

	var input struct {
		Content string `json:"content" binding:"required"`
		Mode    string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	var notebook models.Notebook
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&notebook).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notebook not found"})
		return
	}

	var err error
	if input.Mode == "replace" {
		err = replaceNotebookContent(notebook.ID, userID, input.Content)
	} else {
		err = appendNotebookContent(notebook.ID, userID, input.Content)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notebook"})
		return
	}

	// Balikin row utuh hasil update
	database.DB.First(&notebook, notebook.ID)
	c.JSON(http.StatusOK, gin.H{"notebook": notebook})
}

// 5. DELETE /api/notebooks/:id — cascade: messages -> sessions -> notebook,
// satu transaksi biar tidak ada row yatim kalau gagal di tengah.
func DeleteNotebook(c *gin.Context) {
	userID := getUserID(c)
	id := c.Param("id")

	var notebook models.Notebook
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&notebook).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notebook not found"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var sessionIDs []uint
		if err := tx.Model(&models.ChatSession{}).
			Where("notebook_id = ? AND user_id = ?", notebook.ID, userID).
			Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", sessionIDs).Delete(&models.ChatSession{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&notebook).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notebook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

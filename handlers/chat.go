package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"prism-backend/database"
	"prism-backend/gemini"
	"prism-backend/models"
	"prism-backend/quota"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errClientGone = errors.New("client disconnected")

type ChatMessagePayload struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type ChatInput struct {
	Messages   []ChatMessagePayload `json:"messages" binding:"required"`
	NotebookID uint                 `json:"notebook_id"`
}

// --- MAPPING ROLE (kontrak dua arah, lihat models/chat.go) ---

// Ke arah Gemini: assistant -> "model"
func toModelRole(role string) string {
	if role == models.RoleUser {
		return gemini.RoleUser
	}
	return gemini.RoleModel
}

// Ke arah UI: "model" -> "assistant"
func toUIRole(role string) string {
	if role == gemini.RoleModel {
		return models.RoleAssistant
	}
	return role
}

// --- SESSION / TRANSCRIPT STORE ---

// ensureSession: ambil session TERBARU untuk (user, notebook), atau buat baru.
// Kebijakan race: last-writer-wins. Dua first-turn barengan bisa bikin dua row,
// tapi semua read berikutnya selalu menunjuk row terbaru, jadi urutan pesan
// di session yang kepilih tetap benar.
func ensureSession(userID string, notebookID uint, defaultTopic string) (models.ChatSession, error) {
	var session models.ChatSession
	err := database.DB.
		Where("user_id = ? AND notebook_id = ?", userID, notebookID).
		Order("created_at desc, id desc").
		First(&session).Error
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ChatSession{}, err
	}

	session = models.ChatSession{
		UserID:     userID,
		NotebookID: notebookID,
		Topic:      defaultTopic,
		CreatedAt:  time.Now(),
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return models.ChatSession{}, err
	}
	return session, nil
}

func appendMessage(sessionID uint, role, content string) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	err := database.DB.Create(&msg).Error
	return msg, err
}

// sessionHistory: urutan created_at (+id buat tie-break) ASCENDING.
// Urutan ini yang diputar ulang ke model DAN ke UI, jangan diubah-ubah.
func sessionHistory(sessionID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := database.DB.
		Where("session_id = ?", sessionID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	return msgs, err
}

func historyByNotebook(notebookID uint, userID string) ([]models.ChatMessage, error) {
	var session models.ChatSession
	err := database.DB.
		Where("user_id = ? AND notebook_id = ?", userID, notebookID).
		Order("created_at desc, id desc").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // belum ada chat = history kosong, bukan error
	}
	if err != nil {
		return nil, err
	}
	return sessionHistory(session.ID)
}

// buildModelHistory: semua pesan KECUALI giliran terakhir, role dipetakan,
// dan giliran pembuka wajib dari sisi manusia. Kalau pesan tertua dari model
// (mis. greeting), dibuang — Gemini menolak history yang dibuka model.
func buildModelHistory(messages []ChatMessagePayload) []gemini.Turn {
	var history []gemini.Turn
	for _, m := range messages[:len(messages)-1] {
		history = append(history, gemini.Turn{Role: toModelRole(m.Role), Text: m.Content})
	}
	for len(history) > 0 && history[0].Role != gemini.RoleUser {
		history = history[1:]
	}
	return history
}

// --- ORKESTRATOR: SATU TURN CHAT END-TO-END ---
//
// Urutan WAJIB: validasi -> kuota -> simpan pesan user -> panggil model (stream)
// -> simpan jawaban utuh -> ekstraksi catatan async. Turn yang ditolak kuota
// tidak boleh ninggalin jejak apa pun di store.
func SubmitTurn(c *gin.Context) {
	userID := getUserID(c)

	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(input.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages required"})
		return
	}
	last := input.Messages[len(input.Messages)-1]
	if last.Role != models.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Last message must be from user"})
		return
	}

	// 1. Upsert user (idempoten)
	if _, err := getOrCreateUser(userID, getEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get/create user"})
		return
	}

	// 2. Cek kuota SEBELUM side effect apa pun. Ditolak = stop total.
	decision, err := Ledger.CheckAndConsume(userID, quota.ChatTurnCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota check failed"})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Daily Limit Reached",
			"reason":  decision.Reason,
			"message": "You've used all your free messages for today. Upgrade to Pro for unlimited learning!",
		})
		return
	}

	// 3. Kalau ada notebook: pastikan session, simpan pesan user SEKARANG.
	// Pesan user harus selamat walau model gagal — input user tidak bisa diketik ulang sendiri.
	var sessionID uint
	if input.NotebookID != 0 {
		var notebook models.Notebook
		if err := database.DB.Where("id = ? AND user_id = ?", input.NotebookID, userID).First(&notebook).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notebook not found"})
			return
		}

		session, err := ensureSession(userID, input.NotebookID, "Chat Session")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare session"})
			return
		}
		sessionID = session.ID

		if _, err := appendMessage(sessionID, models.RoleUser, last.Content); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
			return
		}
	}

	// 4. History model-facing (tanpa giliran terakhir, role dipetakan)
	history := buildModelHistory(input.Messages)

	// 5. Stream jawaban ke caller sambil diakumulasi. Header baru ditulis saat
	// chunk pertama datang, jadi kegagalan total masih bisa dibalas JSON error.
	wrote := false
	clientGone := c.Request.Context().Done()

	full, streamErr := AI.StreamChat(c.Request.Context(), history, last.Content, func(chunk string) error {
		select {
		case <-clientGone:
			return errClientGone
		default:
		}
		if !wrote {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Status(http.StatusOK)
			wrote = true
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})

	if streamErr != nil {
		// Kebijakan: teks parsial DIBUANG, tidak masuk transkrip.
		// Pesan user yang sudah tersimpan DIBIARKAN, kuota TIDAK direfund.
		if errors.Is(streamErr, errClientGone) {
			log.Printf("chat: client putus di tengah stream (user %s), jawaban parsial dibuang", userID)
			return
		}
		log.Printf("chat: model gagal untuk user %s: %v", userID, streamErr)
		if !wrote {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Model call failed", "retryable": true})
		}
		return
	}

	// 6. Stream beres: simpan jawaban UTUH (bukan per-chunk)
	if sessionID != 0 && full != "" {
		if _, err := appendMessage(sessionID, models.RoleAssistant, full); err != nil {
			log.Printf("chat: gagal simpan jawaban assistant (session %d): %v", sessionID, err)
			return
		}

		// 7. Ekstraksi catatan: async, best-effort. Gagal di sini bukan gagal turn.
		go extractAndAppendNotes(input.NotebookID, userID, full)
	}
}

// extractAndAppendNotes jalan di luar request (context sendiri): jawaban tutor
// dirangkum lalu di-append ke notebook. Semua kegagalan cuma di-log.
func extractAndAppendNotes(notebookID uint, userID, assistantText string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	notes, err := AI.ExtractNotes(ctx, assistantText)
	if err != nil {
		log.Printf("notes: ekstraksi gagal untuk notebook %d: %v", notebookID, err)
		return
	}
	if strings.TrimSpace(notes) == "" {
		return
	}
	if err := appendNotebookContent(notebookID, userID, notes); err != nil {
		log.Printf("notes: gagal append ke notebook %d: %v", notebookID, err)
	}
}

// GET /api/chat/history?notebook_id=X — proyeksi read-only, role versi UI.
func GetHistory(c *gin.Context) {
	userID := getUserID(c)

	notebookID, err := strconv.Atoi(c.Query("notebook_id"))
	if err != nil || notebookID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notebook ID required"})
		return
	}

	raw, err := historyByNotebook(uint(notebookID), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history"})
		return
	}

	messages := make([]gin.H, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, gin.H{
			"role":    toUIRole(m.Role),
			"content": m.Content,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

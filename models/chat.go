package models

import "time"

// Role yang tersimpan di DB. Ke arah Gemini "assistant" dipetakan jadi "model",
// ke arah UI dipetakan balik. Mapping dua arah ini kontrak keras, bukan kosmetik.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index" json:"user_id"`
	NotebookID uint      `gorm:"index" json:"notebook_id"`
	Topic      string    `json:"topic"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"index" json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

type Notebook struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index" json:"user_id"`
	TopicTitle string    `json:"topic_title"`
	Content    string    `json:"content"` // Markdown, praktis append-only
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

package models

import "time"

type User struct {
	ID       string `gorm:"primaryKey" json:"id"` // ID dari identity provider (opaque, stabil)
	Email    string `gorm:"unique" json:"email"`
	Password string `json:"-"` // Hanya terisi untuk akun register lokal
	Role     string `json:"role"`
	IsPro    bool   `json:"is_pro"`

	// Kode referral unik + siapa yang mengajak
	ReferralCode string  `gorm:"unique" json:"referral_code"`
	ReferredBy   *string `json:"referred_by"`

	// MODEL KUOTA 1: Counter harian (reset malas saat ganti tanggal, lihat package quota)
	DailyMessagesUsed int    `json:"daily_messages_used"`
	LastMessageDate   string `json:"last_message_date"` // Format YYYY-MM-DD (lokal)

	// MODEL KUOTA 2: Neural energy (refill per jam, cap 100)
	NeuralEnergy     int       `json:"neural_energy"`
	LastEnergyRefill time.Time `json:"last_energy_refill"`

	CreatedAt time.Time `json:"created_at"`
}

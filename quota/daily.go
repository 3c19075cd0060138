package quota

import (
	"errors"
	"log"
	"time"

	"prism-backend/models"

	"gorm.io/gorm"
)

// DailyLedger: counter harian dengan reset malas di tengah malam lokal.
// Tidak ada cron jam 00:00 — tanggal tersimpan yang basi dianggap count 0,
// dan baru ditulis ulang saat ada konsumsi berikutnya.
type DailyLedger struct {
	DB    *gorm.DB
	Limit int
}

func NewDailyLedger(db *gorm.DB) *DailyLedger {
	return &DailyLedger{DB: db, Limit: FreeDailyLimit}
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func (l *DailyLedger) CheckAndConsume(userID string, cost int) (Decision, error) {
	var user models.User
	if err := l.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{}, err
		}
		return l.failOpen(userID, err), nil
	}

	// User pro: selalu boleh, tidak ada row yang disentuh
	if user.IsPro {
		return Decision{Allowed: true, Remaining: l.Limit}, nil
	}

	// INTI PERBAIKAN: cek + increment dalam SATU statement kondisional.
	// Tanggal basi dihitung sebagai 0 di WHERE maupun di SET (reset malas).
	// RowsAffected == 0 berarti ditolak dan TIDAK ada mutasi sama sekali.
	now := today()
	res := l.DB.Exec(`
		UPDATE users
		SET daily_messages_used = CASE WHEN last_message_date = ? THEN daily_messages_used + ? ELSE ? END,
		    last_message_date = ?
		WHERE id = ?
		  AND (CASE WHEN last_message_date = ? THEN daily_messages_used ELSE 0 END) + ? <= ?`,
		now, cost, cost, now, userID, now, cost, l.Limit)
	if res.Error != nil {
		return l.failOpen(userID, res.Error), nil
	}

	if res.RowsAffected == 0 {
		return Decision{
			Allowed:   false,
			Remaining: 0,
			Reason:    "daily_limit_reached",
		}, nil
	}

	// Baca balik untuk angka remaining yang akurat (keputusan sudah final di atas)
	remaining := 0
	if err := l.DB.First(&user, "id = ?", userID).Error; err == nil {
		remaining = l.Limit - user.DailyMessagesUsed
		if remaining < 0 {
			remaining = 0
		}
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}

func (l *DailyLedger) Stats(userID string) (Stats, error) {
	var user models.User
	if err := l.DB.First(&user, "id = ?", userID).Error; err != nil {
		return Stats{}, err
	}
	if user.IsPro {
		return Stats{IsPro: true, Limit: l.Limit, Remaining: l.Limit}, nil
	}
	count := user.DailyMessagesUsed
	if user.LastMessageDate != today() {
		count = 0 // reset malas: tanggal basi = belum pakai apa-apa hari ini
	}
	return Stats{Count: count, Limit: l.Limit, Remaining: l.Limit - count}, nil
}

// GrantBonus mengampuni sebagian pemakaian hari ini (floor 0).
// Kalau tanggal tersimpan basi, count memang sudah logis 0: no-op, tidak masalah.
func (l *DailyLedger) GrantBonus(userID string, amount int) error {
	return l.DB.Exec(
		`UPDATE users SET daily_messages_used = MAX(0, daily_messages_used - ?) WHERE id = ?`,
		amount, userID).Error
}

// failOpen: store tidak sehat -> loloskan aksi daripada memblokir semua user,
// tapi harus kelihatan di log buat audit.
func (l *DailyLedger) failOpen(userID string, err error) Decision {
	log.Printf("ANOMALI quota: store unreachable, fail-open untuk user %s: %v", userID, err)
	return Decision{Allowed: true, Remaining: l.Limit, FailedOpen: true}
}

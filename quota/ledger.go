// Package quota memutuskan boleh/tidaknya satu aksi berbayar-kuota,
// dan mencatat pemakaiannya dalam operasi DB yang sama (atomik).
package quota

// Biaya per aksi dalam satuan unit. Doubt sengaja lebih murah dari turn penuh.
const (
	ChatTurnCost = 2
	DoubtCost    = 1

	FreeDailyLimit = 20 // 20 unit = 10 turn chat per hari untuk user gratis

	EnergyMax          = 100
	EnergyRefillRate   = 5 // +5 energy per jam penuh
	ReferralBonusDaily = 10
	ReferralBonusNRG   = 50
)

// Decision hasil satu kali cek kuota. Denied itu keputusan normal, bukan error.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
	// FailedOpen true kalau store tidak bisa diakses dan kita memilih
	// meloloskan aksi (availability > enforcement). Wajib ke-log.
	FailedOpen bool `json:"-"`
}

type Stats struct {
	IsPro     bool `json:"is_pro"`
	Count     int  `json:"count"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

// Ledger dipilih SEKALI di main.go (daily atau energy), tidak dua-duanya.
type Ledger interface {
	// CheckAndConsume: cek + increment dalam SATU update kondisional.
	// Dua request konkuren tidak boleh sama-sama lolos lewat slot terakhir.
	CheckAndConsume(userID string, cost int) (Decision, error)
	Stats(userID string) (Stats, error)
	// GrantBonus menambah jatah (bonus referral) sesuai strategi aktif.
	GrantBonus(userID string, amount int) error
}

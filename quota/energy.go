package quota

import (
	"errors"
	"log"
	"time"

	"prism-backend/models"

	"gorm.io/gorm"
)

// EnergyLedger: strategi alternatif berbasis poin "neural energy" 0..100
// dengan refill per jam. Satu dari dua strategi, dipilih di main.go.
type EnergyLedger struct {
	DB *gorm.DB
}

func NewEnergyLedger(db *gorm.DB) *EnergyLedger {
	return &EnergyLedger{DB: db}
}

func (l *EnergyLedger) CheckAndConsume(userID string, cost int) (Decision, error) {
	var user models.User
	if err := l.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{}, err
		}
		log.Printf("ANOMALI quota: store unreachable, fail-open untuk user %s: %v", userID, err)
		return Decision{Allowed: true, Remaining: EnergyMax, FailedOpen: true}, nil
	}

	if user.IsPro {
		return Decision{Allowed: true, Remaining: EnergyMax}, nil
	}

	l.Refill(userID)

	// Decrement kondisional: tidak pernah minus, dan slot terakhir
	// cuma bisa dimenangkan satu request.
	res := l.DB.Exec(
		`UPDATE users SET neural_energy = neural_energy - ? WHERE id = ? AND neural_energy >= ?`,
		cost, userID, cost)
	if res.Error != nil {
		log.Printf("ANOMALI quota: store unreachable, fail-open untuk user %s: %v", userID, res.Error)
		return Decision{Allowed: true, Remaining: EnergyMax, FailedOpen: true}, nil
	}
	if res.RowsAffected == 0 {
		return Decision{Allowed: false, Remaining: 0, Reason: "energy_depleted"}, nil
	}

	remaining := 0
	if err := l.DB.First(&user, "id = ?", userID).Error; err == nil {
		remaining = user.NeuralEnergy
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}

// Refill tambah (jam penuh berlalu × rate), cap 100. Timestamp refill HANYA
// digeser kalau memang ada energi yang masuk — kalau digeser terus,
// sisa menit yang belum genap sejam bakal hangus terus-terusan.
// UPDATE-nya dijaga timestamp yang tadi dibaca: dua request barengan cuma
// SATU yang menang kredit, yang kalah (RowsAffected 0) berarti jatah jamnya
// sudah dikredit orang lain — bukan double credit.
func (l *EnergyLedger) Refill(userID string) error {
	var user models.User
	if err := l.DB.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	hoursPassed := int(time.Since(user.LastEnergyRefill).Hours())
	if hoursPassed <= 0 {
		return nil
	}

	toAdd := hoursPassed * EnergyRefillRate
	if toAdd > EnergyMax-user.NeuralEnergy {
		toAdd = EnergyMax - user.NeuralEnergy
	}
	if toAdd <= 0 {
		return nil // sudah penuh, jangan sentuh timestamp
	}

	return l.DB.Exec(
		`UPDATE users SET neural_energy = MIN(?, neural_energy + ?), last_energy_refill = ?
		 WHERE id = ? AND last_energy_refill = ?`,
		EnergyMax, toAdd, time.Now(), userID, user.LastEnergyRefill).Error
}

func (l *EnergyLedger) Stats(userID string) (Stats, error) {
	l.Refill(userID)
	var user models.User
	if err := l.DB.First(&user, "id = ?", userID).Error; err != nil {
		return Stats{}, err
	}
	if user.IsPro {
		return Stats{IsPro: true, Limit: EnergyMax, Remaining: EnergyMax}, nil
	}
	return Stats{
		Count:     EnergyMax - user.NeuralEnergy,
		Limit:     EnergyMax,
		Remaining: user.NeuralEnergy,
	}, nil
}

func (l *EnergyLedger) GrantBonus(userID string, amount int) error {
	return l.DB.Exec(
		`UPDATE users SET neural_energy = MIN(?, neural_energy + ?) WHERE id = ?`,
		EnergyMax, amount, userID).Error
}

package quota

import (
	"sync"
	"testing"
	"time"

	"prism-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergyLedger_ConsumeDecrements(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 10, LastEnergyRefill: time.Now()})

	d, err := ledger.CheckAndConsume("u1", ChatTurnCost)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 8, d.Remaining)
}

func TestEnergyLedger_NeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 1, LastEnergyRefill: time.Now()})

	// Sisa 1, biaya 2: ditolak dan energi tidak berubah
	d, err := ledger.CheckAndConsume("u1", ChatTurnCost)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "energy_depleted", d.Reason)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, 1, user.NeuralEnergy)

	// Doubt (biaya 1) masih bisa
	d, err = ledger.CheckAndConsume("u1", DoubtCost)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestEnergyLedger_RefillWholeHours(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 50, LastEnergyRefill: time.Now().Add(-3 * time.Hour)})

	require.NoError(t, ledger.Refill("u1"))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, 65, user.NeuralEnergy) // 3 jam x 5
	assert.WithinDuration(t, time.Now(), user.LastEnergyRefill, 5*time.Second)
}

func TestEnergyLedger_RefillCapsAtMax(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 98, LastEnergyRefill: time.Now().Add(-10 * time.Hour)})

	require.NoError(t, ledger.Refill("u1"))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, EnergyMax, user.NeuralEnergy)
}

// Belum genap sejam: jangan nambah DAN jangan geser timestamp,
// biar sisa menitnya tidak hangus.
func TestEnergyLedger_FractionalHourKeepsTimestamp(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	lastRefill := time.Now().Add(-30 * time.Minute)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 50, LastEnergyRefill: lastRefill})

	require.NoError(t, ledger.Refill("u1"))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, 50, user.NeuralEnergy)
	assert.WithinDuration(t, lastRefill, user.LastEnergyRefill, time.Second)
}

func TestEnergyLedger_FullEnergyKeepsTimestamp(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	lastRefill := time.Now().Add(-5 * time.Hour)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: EnergyMax, LastEnergyRefill: lastRefill})

	require.NoError(t, ledger.Refill("u1"))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, EnergyMax, user.NeuralEnergy)
	assert.WithinDuration(t, lastRefill, user.LastEnergyRefill, time.Second)
}

// Refill konkuren: jatah jam yang sama cuma boleh dikredit SEKALI.
// Guard timestamp di UPDATE yang memutuskan pemenangnya, yang kalah no-op.
func TestEnergyLedger_ConcurrentRefillCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 0, LastEnergyRefill: time.Now().Add(-2 * time.Hour)})

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Refill("u1"); err != nil {
				t.Errorf("Refill error: %v", err)
			}
		}()
	}
	wg.Wait()

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, 2*EnergyRefillRate, user.NeuralEnergy) // 2 jam x 5, bukan kelipatan caller
}

func TestEnergyLedger_GrantBonusCapped(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "u1", NeuralEnergy: 80, LastEnergyRefill: time.Now()})

	require.NoError(t, ledger.GrantBonus("u1", ReferralBonusNRG))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, EnergyMax, user.NeuralEnergy)
}

func TestEnergyLedger_ProBypass(t *testing.T) {
	db := newTestDB(t)
	ledger := NewEnergyLedger(db)
	seedUser(t, db, models.User{ID: "pro", IsPro: true, NeuralEnergy: 0, LastEnergyRefill: time.Now()})

	d, err := ledger.CheckAndConsume("pro", ChatTurnCost)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "pro").Error)
	assert.Equal(t, 0, user.NeuralEnergy)
}

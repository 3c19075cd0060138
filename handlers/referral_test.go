package handlers

import (
	"net/http"
	"testing"

	"prism-backend/models"
	"prism-backend/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferral_BonusAppliedExactlyOnce(t *testing.T) {
	db, _ := setupTest(t)
	r := newRouter()

	// Dua-duanya sudah setengah jalan pemakaian hari ini
	seedUser(t, db, models.User{ID: "referrer", ReferralCode: "PRISMABC123", DailyMessagesUsed: 15, LastMessageDate: todayStr()})
	seedUser(t, db, models.User{ID: "referee", DailyMessagesUsed: 15, LastMessageDate: todayStr()})
	token := authToken(t, "referee", "user")

	w := doJSON(t, r, http.MethodPost, "/api/referral", token, map[string]string{"code": "PRISMABC123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	// Bonus dua arah: jatah keduanya diampuni
	var referee, referrer models.User
	require.NoError(t, db.First(&referee, "id = ?", "referee").Error)
	require.NoError(t, db.First(&referrer, "id = ?", "referrer").Error)
	assert.Equal(t, 15-quota.ReferralBonusDaily, referee.DailyMessagesUsed)
	assert.Equal(t, 15-quota.ReferralBonusDaily, referrer.DailyMessagesUsed)
	require.NotNil(t, referee.ReferredBy)
	assert.Equal(t, "referrer", *referee.ReferredBy)

	// Kedua kali: ditolak, tidak ada bonus dobel
	w = doJSON(t, r, http.MethodPost, "/api/referral", token, map[string]string{"code": "PRISMABC123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, db.First(&referee, "id = ?", "referee").Error)
	assert.Equal(t, 15-quota.ReferralBonusDaily, referee.DailyMessagesUsed)
}

func TestReferral_InvalidCodeChangesNothing(t *testing.T) {
	db, _ := setupTest(t)
	r := newRouter()
	seedUser(t, db, models.User{ID: "u1", DailyMessagesUsed: 15, LastMessageDate: todayStr()})

	w := doJSON(t, r, http.MethodPost, "/api/referral", authToken(t, "u1", "user"),
		map[string]string{"code": "PRISMNOPE99"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid referral code")

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Equal(t, 15, user.DailyMessagesUsed)
	assert.Nil(t, user.ReferredBy)
}

func TestReferral_CannotUseOwnCode(t *testing.T) {
	db, _ := setupTest(t)
	r := newRouter()
	seedUser(t, db, models.User{ID: "u1", ReferralCode: "PRISMSELF01", DailyMessagesUsed: 15, LastMessageDate: todayStr()})

	w := doJSON(t, r, http.MethodPost, "/api/referral", authToken(t, "u1", "user"),
		map[string]string{"code": "PRISMSELF01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "u1").Error)
	assert.Nil(t, user.ReferredBy)
	assert.Equal(t, 15, user.DailyMessagesUsed)
}

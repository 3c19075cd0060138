package handlers

import (
	"net/http"
	"strings"

	"prism-backend/database"
	"prism-backend/models"
	"prism-backend/quota"

	"github.com/gin-gonic/gin"
)

// POST /api/referral — pakai kode teman, dua-duanya dapat bonus jatah.
// Cuma boleh SEKALI seumur akun: guard-nya update kondisional referred_by IS NULL,
// bukan cek-dulu-baru-update (itu race yang sama seperti di kuota).
func ApplyReferral(c *gin.Context) {
	userID := getUserID(c)

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Referral code required"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	if _, err := getOrCreateUser(userID, getEmail(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get/create user"})
		return
	}

	// Cari pemilik kode. id != userID menolak kode milik sendiri.
	var referrer models.User
	if err := database.DB.Where("referral_code = ? AND id != ?", code, userID).First(&referrer).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid referral code"})
		return
	}

	res := database.DB.Exec(
		`UPDATE users SET referred_by = ? WHERE id = ? AND referred_by IS NULL`,
		referrer.ID, userID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply referral"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Referral already applied"})
		return
	}

	// Bonus lewat ledger aktif: daily = ampuni pemakaian, energy = +50
	bonus := quota.ReferralBonusDaily
	if _, ok := Ledger.(*quota.EnergyLedger); ok {
		bonus = quota.ReferralBonusNRG
	}
	Ledger.GrantBonus(userID, bonus)
	Ledger.GrantBonus(referrer.ID, bonus)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Referral bonus applied!"})
}

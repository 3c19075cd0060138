package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"prism-backend/database"
	"prism-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// --- STRUKTUR PAYLOAD DARI BILLING ORACLE ---

type subscriptionEntity struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	PlanID     string `json:"plan_id"`
	Status     string `json:"status"`
	CurrentEnd int64  `json:"current_end"` // epoch detik, 0 = tidak ada
}

type billingEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Payment struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// verifySignature: HMAC-SHA256 hex atas raw body. Kalau secret belum di-set
// (dev), verifikasi dilewati tapi di-log biar ketahuan.
func verifySignature(body []byte, signature string) bool {
	secret := os.Getenv("BILLING_WEBHOOK_SECRET")
	if secret == "" {
		log.Printf("webhook: BILLING_WEBHOOK_SECRET kosong, signature TIDAK diverifikasi")
		return true
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// POST /webhooks/billing — satu-satunya sumber kebenaran status pro.
// User.IsPro dan Subscription.Status di-set DI SINI, tidak pernah dihitung saat read.
func BillingWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read body"})
		return
	}

	if !verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var event billingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	entity := event.Payload.Subscription.Entity

	switch event.Event {
	case "subscription.authenticated", "subscription.activated":
		// Aktivasi awal: baris Subscription dibuat saat checkout, cari via customer
		userID := findSubscriberBy("external_customer_id", entity.CustomerID)
		if userID == "" {
			break
		}
		status := mapSubscriptionStatus(entity.Status)
		upsertSubscription(userID, entity, status)
		setUserPro(userID, models.ProStatus(status))

	case "subscription.charged":
		userID := findSubscriberBy("external_subscription_id", entity.ID)
		if userID == "" {
			break
		}
		upsertSubscription(userID, entity, models.SubActive)
		setUserPro(userID, true)

	case "subscription.cancelled", "subscription.halted", "subscription.completed":
		userID := findSubscriberBy("external_subscription_id", entity.ID)
		if userID == "" {
			break
		}
		entity.CurrentEnd = 0
		status := mapSubscriptionStatus(entity.Status)
		upsertSubscription(userID, entity, status)
		setUserPro(userID, models.ProStatus(status))

	case "payment.failed":
		log.Printf("webhook: payment gagal: %s", event.Payload.Payment.Entity.ID)

	default:
		// Event lain cukup di-ack, jangan bikin oracle retry terus
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func findSubscriberBy(column, value string) string {
	if value == "" {
		return ""
	}
	var sub models.Subscription
	if err := database.DB.Where(column+" = ?", value).First(&sub).Error; err != nil {
		log.Printf("webhook: subscription tidak ditemukan (%s=%s)", column, value)
		return ""
	}
	return sub.UserID
}

func upsertSubscription(userID string, entity subscriptionEntity, status string) {
	var periodEnd *time.Time
	if entity.CurrentEnd > 0 {
		t := time.Unix(entity.CurrentEnd, 0)
		periodEnd = &t
	}
	sub := models.Subscription{
		UserID:                 userID,
		ExternalSubscriptionID: entity.ID,
		ExternalCustomerID:     entity.CustomerID,
		PlanID:                 entity.PlanID,
		Status:                 status,
		CurrentPeriodEnd:       periodEnd,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_subscription_id", "plan_id", "status", "current_period_end", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		log.Printf("webhook: gagal upsert subscription user %s: %v", userID, err)
	}
}

func setUserPro(userID string, isPro bool) {
	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_pro", isPro).Error; err != nil {
		log.Printf("webhook: gagal set is_pro user %s: %v", userID, err)
	}
}

// mapSubscriptionStatus: vocab provider -> vocab internal
func mapSubscriptionStatus(providerStatus string) string {
	switch providerStatus {
	case "authenticated", "created":
		return models.SubTrial
	case "active":
		return models.SubActive
	case "cancelled", "halted", "completed", "expired":
		return models.SubCancelled
	default:
		return models.SubInactive
	}
}

// --- IDENTITY PROVIDER WEBHOOK ---

// POST /webhooks/identity — user.created/user.updated dari identity provider.
// Upsert idempoten; event lain diabaikan.
func IdentityWebhook(c *gin.Context) {
	var event struct {
		Type string `json:"type"`
		Data struct {
			ID             string `json:"id"`
			EmailAddresses []struct {
				EmailAddress string `json:"email_address"`
			} `json:"email_addresses"`
		} `json:"data"`
	}
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		if event.Data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user id"})
			return
		}
		email := ""
		if len(event.Data.EmailAddresses) > 0 {
			email = event.Data.EmailAddresses[0].EmailAddress
		}
		if _, err := getOrCreateUser(event.Data.ID, email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

package models

import "time"

// Status langganan dari billing oracle. User.IsPro hanyalah cache turunan
// dari status trial/active, di-set oleh webhook, bukan dihitung saat read.
const (
	SubInactive  = "inactive"
	SubTrial     = "trial"
	SubActive    = "active"
	SubCancelled = "cancelled"
)

type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 string     `gorm:"unique" json:"user_id"`
	ExternalSubscriptionID string     `gorm:"index" json:"external_subscription_id"`
	ExternalCustomerID     string     `gorm:"index" json:"external_customer_id"`
	PlanID                 string     `json:"plan_id"`
	Status                 string     `json:"status"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// ProStatus true jika status langganan memberi akses pro.
func ProStatus(status string) bool {
	return status == SubTrial || status == SubActive
}

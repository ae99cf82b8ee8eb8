package models

import "time"

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)

// Subscription mirrors the Stripe-side subscription state for a user. There
// is at most one row per user; it is created lazily on the first checkout
// attempt (customer id only) and mutated by webhook events afterwards.
// Rows are never deleted.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	StripeCustomerID     *string    `gorm:"type:varchar(191);default:null;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `gorm:"type:varchar(191);default:null" json:"stripe_subscription_id,omitempty"`
	Plan                 string     `gorm:"type:varchar(20);not null;default:'free'" json:"plan"`
	Status               string     `gorm:"type:varchar(32);not null;default:'inactive'" json:"status"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

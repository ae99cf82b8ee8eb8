package entitlements

import (
	"time"

	"github.com/gl11tchy/test-project-2/app/models"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Daily AI message limits per tier.
const (
	FreeDailyMessages = 10
	ProDailyMessages  = 1000
)

// IsEntitled reports whether the subscription grants paid-tier access at the
// given time. This is the single shared predicate for both the chat quota
// gate and any presentation path; do not reimplement the rule elsewhere.
//
// A canceled or past_due subscription keeps its entitlement until the end of
// the already-paid billing period (the grace window). While the status is
// active, Stripe is the source of truth and the period end is ignored.
func IsEntitled(sub *models.Subscription, now time.Time) bool {
	if sub == nil || sub.Plan != models.PlanPro {
		return false
	}

	switch sub.Status {
	case models.SubscriptionStatusActive:
		return true
	case models.SubscriptionStatusCanceled, models.SubscriptionStatusPastDue:
		return sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(now)
	default:
		return false
	}
}

// DailyMessageLimit returns the per-day chat message allowance for a
// subscription, derived through IsEntitled.
func DailyMessageLimit(sub *models.Subscription, now time.Time) int {
	if IsEntitled(sub, now) {
		return ProDailyMessages
	}
	return FreeDailyMessages
}

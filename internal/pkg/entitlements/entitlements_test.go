package entitlements

import (
	"testing"
	"time"

	"github.com/gl11tchy/test-project-2/app/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsEntitled(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := timePtr(now.Add(24 * time.Hour))
	past := timePtr(now.Add(-24 * time.Hour))

	tests := []struct {
		name string
		sub  *models.Subscription
		want bool
	}{
		{name: "nil subscription", sub: nil, want: false},
		{
			name: "free plan regardless of status",
			sub:  &models.Subscription{Plan: models.PlanFree, Status: models.SubscriptionStatusActive},
			want: false,
		},
		{
			name: "active pro",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusActive},
			want: true,
		},
		{
			name: "active pro with expired period end still entitled",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusActive, CurrentPeriodEnd: past},
			want: true,
		},
		{
			name: "canceled pro inside grace window",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusCanceled, CurrentPeriodEnd: future},
			want: true,
		},
		{
			name: "canceled pro after grace window",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusCanceled, CurrentPeriodEnd: past},
			want: false,
		},
		{
			name: "canceled pro exactly at period end",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusCanceled, CurrentPeriodEnd: timePtr(now)},
			want: false,
		},
		{
			name: "canceled pro without period end",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusCanceled},
			want: false,
		},
		{
			name: "past_due pro inside grace window",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusPastDue, CurrentPeriodEnd: future},
			want: true,
		},
		{
			name: "past_due pro after grace window",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusPastDue, CurrentPeriodEnd: past},
			want: false,
		},
		{
			name: "inactive pro",
			sub:  &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusInactive, CurrentPeriodEnd: future},
			want: false,
		},
	}

	for _, tt := range tests {
		if got := IsEntitled(tt.sub, now); got != tt.want {
			t.Fatalf("%s: IsEntitled = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDailyMessageLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := DailyMessageLimit(nil, now); got != FreeDailyMessages {
		t.Fatalf("nil subscription limit = %d, want %d", got, FreeDailyMessages)
	}

	pro := &models.Subscription{Plan: models.PlanPro, Status: models.SubscriptionStatusActive}
	if got := DailyMessageLimit(pro, now); got != ProDailyMessages {
		t.Fatalf("active pro limit = %d, want %d", got, ProDailyMessages)
	}

	expired := &models.Subscription{
		Plan:             models.PlanPro,
		Status:           models.SubscriptionStatusCanceled,
		CurrentPeriodEnd: timePtr(now.Add(-time.Hour)),
	}
	if got := DailyMessageLimit(expired, now); got != FreeDailyMessages {
		t.Fatalf("expired pro limit = %d, want %d", got, FreeDailyMessages)
	}
}

package billing

import (
	"encoding/json"
	"strings"
)

// Webhook event types this service reconciles. Anything else is accepted and
// ignored so that Stripe does not retry deliveries we intentionally skip.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
)

// Event is the envelope of a Stripe webhook delivery.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSessionEvent carries the fields we reconcile from a completed
// checkout session.
type CheckoutSessionEvent struct {
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

// SubscriptionEvent carries the fields we reconcile from a subscription
// lifecycle event. Period bounds are epoch seconds.
type SubscriptionEvent struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

// ParseEvent decodes a raw webhook payload into the event envelope.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// MapSubscriptionStatus maps Stripe's status vocabulary to ours. Anything we
// do not track explicitly collapses to inactive.
func MapSubscriptionStatus(stripeStatus string) string {
	switch strings.ToLower(strings.TrimSpace(stripeStatus)) {
	case "active":
		return "active"
	case "canceled":
		return "canceled"
	case "past_due":
		return "past_due"
	default:
		return "inactive"
	}
}

package billing

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gl11tchy/test-project-2/app/models"
)

// ErrNoBillingAccount is returned when an operation needs an existing Stripe
// customer but the user never started a checkout.
var ErrNoBillingAccount = errors.New("no billing account for user")

// Service reconciles Stripe-side subscription state into local rows and
// derives checkout/portal sessions for users.
type Service struct {
	repo   Repository
	stripe StripeClient
}

// NewService creates a billing service from an injected repository and
// Stripe client.
func NewService(repo Repository, stripe StripeClient) *Service {
	return &Service{repo: repo, stripe: stripe}
}

// NewServiceFromDB creates a billing service from a GORM DB handle using the
// environment-configured Stripe client.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewStripeClientFromEnv())
}

// GetSubscription returns the user's subscription row, nil when none exists.
func (s *Service) GetSubscription(userID uint) (*models.Subscription, error) {
	return s.repo.GetByUserID(userID)
}

// CreateCheckoutSession ensures a Stripe customer exists for the user and
// returns the URL of a new subscription checkout session.
func (s *Service) CreateCheckoutSession(userID uint, email string) (string, error) {
	customerID, err := s.ensureCustomer(userID, email)
	if err != nil {
		return "", err
	}
	return s.stripe.NewCheckoutSession(customerID)
}

// CreateBillingPortalSession returns the URL of a Stripe billing portal
// session for the user's existing customer, or ErrNoBillingAccount.
func (s *Service) CreateBillingPortalSession(userID uint) (string, error) {
	sub, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "", err
	}
	if sub == nil || sub.StripeCustomerID == nil || *sub.StripeCustomerID == "" {
		return "", ErrNoBillingAccount
	}
	return s.stripe.NewBillingPortalSession(*sub.StripeCustomerID)
}

// ensureCustomer returns the user's Stripe customer id, creating the customer
// and the local subscription row on first use. Customer creation carries an
// idempotency key derived from the user id so concurrent first checkouts
// collapse into one customer record.
func (s *Service) ensureCustomer(userID uint, email string) (string, error) {
	sub, err := s.repo.GetByUserID(userID)
	if err != nil {
		return "", err
	}
	if sub != nil && sub.StripeCustomerID != nil && *sub.StripeCustomerID != "" {
		return *sub.StripeCustomerID, nil
	}

	customerID, err := s.stripe.NewCustomer(userID, email)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpsertCustomerID(userID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// ApplyWebhookEvent routes a verified webhook event through the reconciler.
// Unrecognized event types are ignored without error.
func (s *Service) ApplyWebhookEvent(event *Event) error {
	switch event.Type {
	case EventCheckoutSessionCompleted:
		var session CheckoutSessionEvent
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return err
		}
		return s.ApplyCheckoutCompleted(session)
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub SubscriptionEvent
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return err
		}
		return s.ApplySubscriptionChange(sub)
	default:
		return nil
	}
}

// ApplyCheckoutCompleted promotes the customer's subscription row to the paid
// tier. Replays converge to the same row state; a missing row matches zero
// rows and is not an error (checkout always precedes lifecycle events on
// Stripe's side).
func (s *Service) ApplyCheckoutCompleted(session CheckoutSessionEvent) error {
	_, err := s.repo.UpdateByCustomerID(session.Customer, map[string]interface{}{
		"stripe_subscription_id": session.Subscription,
		"plan":                   models.PlanPro,
		"status":                 models.SubscriptionStatusActive,
	})
	return err
}

// ApplySubscriptionChange writes the event's status, period bounds and cancel
// flag last-write-wins. No sequence ordering is enforced; out-of-order
// delivery can regress state, which matches Stripe's own delivery contract.
func (s *Service) ApplySubscriptionChange(sub SubscriptionEvent) error {
	updates := map[string]interface{}{
		"status":               MapSubscriptionStatus(sub.Status),
		"current_period_start": unixTimePtr(sub.CurrentPeriodStart),
		"current_period_end":   unixTimePtr(sub.CurrentPeriodEnd),
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
	}
	_, err := s.repo.UpdateByCustomerID(sub.Customer, updates)
	return err
}

func unixTimePtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

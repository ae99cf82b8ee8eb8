package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"

	"github.com/gl11tchy/test-project-2/internal/pkg/env"
)

// StripeClient is the narrow Stripe surface the billing service needs.
type StripeClient interface {
	NewCustomer(userID uint, email string) (string, error)
	NewCheckoutSession(customerID string) (string, error)
	NewBillingPortalSession(customerID string) (string, error)
}

// InitStripe wires the Stripe API key from the environment. Call once at
// process start before any billing operation.
func InitStripe() {
	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
}

type stripeClient struct {
	priceIDPro string
	appURL     string
}

// NewStripeClientFromEnv creates a Stripe client configured from the
// environment.
func NewStripeClientFromEnv() StripeClient {
	return &stripeClient{
		priceIDPro: env.GetEnv("STRIPE_PRICE_ID_PRO", ""),
		appURL:     strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:3000"), "/"),
	}
}

func (c *stripeClient) NewCustomer(userID uint, email string) (string, error) {
	if stripe.Key == "" {
		return "", errors.New("Stripe is not configured")
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"user_id": fmt.Sprintf("%d", userID),
		},
	}
	// Collapses concurrent create-customer races into one logical customer.
	params.SetIdempotencyKey(fmt.Sprintf("create-customer-%d", userID))

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (c *stripeClient) NewCheckoutSession(customerID string) (string, error) {
	if c.priceIDPro == "" {
		return "", errors.New("Stripe price ID not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceIDPro),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.appURL + "/dashboard/settings?checkout=success"),
		CancelURL:  stripe.String(c.appURL + "/dashboard/settings?checkout=cancelled"),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (c *stripeClient) NewBillingPortalSession(customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(c.appURL + "/dashboard/settings"),
	}

	sess, err := portalsession.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

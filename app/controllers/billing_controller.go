package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gl11tchy/test-project-2/internal/pkg/billing"
	"github.com/gl11tchy/test-project-2/internal/pkg/metrics/counter"
	"github.com/gl11tchy/test-project-2/internal/pkg/usercontext"
)

// BillingController exposes checkout, the billing portal and the Stripe
// webhook endpoint.
type BillingController struct {
	svc           *billing.Service
	webhookSecret string
}

func NewBillingController(svc *billing.Service, webhookSecret string) *BillingController {
	return &BillingController{svc: svc, webhookSecret: webhookSecret}
}

// HandleCreateCheckout starts a Pro subscription checkout and returns the
// hosted checkout URL.
func (ctl *BillingController) HandleCreateCheckout(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	url, err := ctl.svc.CreateCheckoutSession(uc.UserID, uc.Email)
	if err != nil {
		log.Printf("billing: checkout session failed for user %d: %v", uc.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleCreatePortal returns a billing portal URL for users that already
// have a Stripe customer.
func (ctl *BillingController) HandleCreatePortal(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	url, err := ctl.svc.CreateBillingPortalSession(userID)
	if err != nil {
		if errors.Is(err, billing.ErrNoBillingAccount) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No billing account"})
		}
		log.Printf("billing: portal session failed for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create portal session"})
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleWebhook verifies and applies a Stripe webhook delivery. The endpoint
// is unauthenticated; the signature header is the only trust anchor, so the
// raw body must be verified before any parsing.
func (ctl *BillingController) HandleWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	if !billing.VerifyStripeWebhookSignature(payload, signature, ctl.webhookSecret, time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	event, err := billing.ParseEvent(payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	if err := ctl.svc.ApplyWebhookEvent(event); err != nil {
		log.Printf("billing: webhook %s (%s) failed: %v", event.ID, event.Type, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
	}

	if err := counter.AddWebhookDelivery(event.Type); err != nil {
		log.Printf("billing: webhook counter increment failed: %v", err)
	}

	return c.JSON(fiber.Map{"received": true})
}

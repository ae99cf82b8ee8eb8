package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/gl11tchy/test-project-2/app/models"
	"github.com/gl11tchy/test-project-2/internal/pkg/billing"
	"github.com/gl11tchy/test-project-2/internal/pkg/entitlements"
	"github.com/gl11tchy/test-project-2/internal/pkg/usage"
	"github.com/gl11tchy/test-project-2/internal/pkg/usercontext"
)

// UserController serves the combined account snapshot: profile,
// subscription state and the rolling usage window.
type UserController struct {
	db      *gorm.DB
	billing *billing.Service
	ledger  *usage.Ledger
}

func NewUserController(db *gorm.DB, billingSvc *billing.Service, ledger *usage.Ledger) *UserController {
	return &UserController{db: db, billing: billingSvc, ledger: ledger}
}

type subscriptionResponse struct {
	Plan              string `json:"plan"`
	Status            string `json:"status"`
	CurrentPeriodEnd  *int64 `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool   `json:"cancelAtPeriodEnd"`
}

type usageResponse struct {
	MessagesUsedToday int64 `json:"messagesUsedToday"`
	TokensUsedToday   int64 `json:"tokensUsedToday"`
	DailyMessageLimit int   `json:"dailyMessageLimit"`
}

// HandleGetUser returns the current user with subscription and usage.
func (ctl *UserController) HandleGetUser(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var user models.User
	if err := ctl.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	sub, err := ctl.billing.GetSubscription(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subscription"})
	}

	now := time.Now()
	subResp := subscriptionResponse{
		Plan:   models.PlanFree,
		Status: models.SubscriptionStatusInactive,
	}
	if sub != nil {
		subResp.Plan = sub.Plan
		subResp.Status = sub.Status
		subResp.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		if sub.CurrentPeriodEnd != nil {
			end := sub.CurrentPeriodEnd.Unix()
			subResp.CurrentPeriodEnd = &end
		}
	}

	stats := ctl.ledger.CountToday(userID, now)

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"image": user.Image,
		},
		"subscription": subResp,
		"entitled":     entitlements.IsEntitled(sub, now),
		"usage": usageResponse{
			MessagesUsedToday: stats.Count,
			TokensUsedToday:   stats.TotalTokens,
			DailyMessageLimit: entitlements.DailyMessageLimit(sub, now),
		},
	})
}

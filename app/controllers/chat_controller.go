package controllers

import (
	"bufio"
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/gl11tchy/test-project-2/internal/pkg/ai"
	"github.com/gl11tchy/test-project-2/internal/pkg/billing"
	"github.com/gl11tchy/test-project-2/internal/pkg/entitlements"
	"github.com/gl11tchy/test-project-2/internal/pkg/metrics/counter"
	"github.com/gl11tchy/test-project-2/internal/pkg/usage"
	"github.com/gl11tchy/test-project-2/internal/pkg/usercontext"
)

// ChatController relays chat conversations to the AI provider and streams
// the response back to the browser as server-sent events.
type ChatController struct {
	billing *billing.Service
	ledger  *usage.Ledger
	ai      *ai.Client
}

func NewChatController(billingSvc *billing.Service, ledger *usage.Ledger, aiClient *ai.Client) *ChatController {
	return &ChatController{billing: billingSvc, ledger: ledger, ai: aiClient}
}

type chatRequest struct {
	Messages []ai.Message `json:"messages"`
}

// HandleChat gates the request on the daily quota, then pumps the upstream
// token stream through to the client.
func (ctl *ChatController) HandleChat(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	var req chatRequest
	if err := c.BodyParser(&req); err != nil || len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Messages are required"})
	}

	sub, err := ctl.billing.GetSubscription(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subscription"})
	}

	now := time.Now()
	limit := entitlements.DailyMessageLimit(sub, now)
	if stats := ctl.ledger.CountToday(userID, now); stats.Count >= int64(limit) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Daily message limit reached. Upgrade to Pro for more.",
		})
	}

	// The stream outlives this handler, so the upstream request must not be
	// bound to the fasthttp request context. A dedicated cancelable context
	// tears the upstream connection down as soon as the pump exits, e.g.
	// when a vanished client surfaces as a flush error.
	ctx, cancel := context.WithCancel(context.Background())
	upstream, err := ctl.ai.Stream(ctx, req.Messages)
	if err != nil {
		cancel()
		log.Printf("chat: upstream request failed for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to contact AI provider"})
	}

	if err := counter.AddChatRequest(userID); err != nil {
		log.Printf("chat: counter increment failed: %v", err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	model := ctl.ai.Model()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer upstream.Close()

		relay := new(ai.Relay)
		usageStats, err := relay.Run(upstream, w)
		if err != nil {
			log.Printf("chat: stream aborted for user %d: %v", userID, err)
			ai.WriteErrorFrame(w, "Stream interrupted")
			return
		}

		// Usage is recorded only after the upstream stream ended cleanly.
		ctl.ledger.Record(userID, usageStats.InputTokens, usageStats.OutputTokens, model)
	}))

	return nil
}

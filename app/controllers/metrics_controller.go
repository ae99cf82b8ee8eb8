package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// MetricsController serves the operational counters kept in Redis. Its routes
// sit behind the same basic auth as the monitor dashboard.
type MetricsController struct {
	chatRequests func() (map[string]string, error)
}

func NewMetricsController(chatRequests func() (map[string]string, error)) *MetricsController {
	return &MetricsController{chatRequests: chatRequests}
}

// HandleChatRequests returns the accumulated chat request counts per user id.
func (ctl *MetricsController) HandleChatRequests(c *fiber.Ctx) error {
	counts, err := ctl.chatRequests()
	if err != nil {
		log.Printf("metrics: failed to read chat request counters: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read counters"})
	}
	return c.JSON(fiber.Map{"chatRequests": counts})
}

package counter

import (
	"context"
	"strconv"

	"github.com/gl11tchy/test-project-2/internal/pkg/cache"
)

const (
	chatRequestsKey      = "ai:counters:chat_requests"
	webhookDeliveriesKey = "billing:counters:webhook_deliveries"
)

// AddChatRequest increments the rolling chat request counter in Redis.
func AddChatRequest(userID uint) error {
	field := strconv.FormatUint(uint64(userID), 10)
	return cache.GetClient().HIncrBy(context.Background(), chatRequestsKey, field, 1).Err()
}

// AddWebhookDelivery increments the per-event-type webhook delivery counter.
func AddWebhookDelivery(eventType string) error {
	if eventType == "" {
		eventType = "unknown"
	}
	return cache.GetClient().HIncrBy(context.Background(), webhookDeliveriesKey, eventType, 1).Err()
}

// ChatRequests returns the accumulated chat request counts per user id.
func ChatRequests() (map[string]string, error) {
	return cache.GetClient().HGetAll(context.Background(), chatRequestsKey).Result()
}

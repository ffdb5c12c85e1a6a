package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel names. User-scoped events go to a per-user channel so each
// connected client only sees its own notifications; the broadcast channel
// carries events with no assignee.
const (
	BroadcastChannel  = "crm:notifications"
	UserChannelPrefix = "crm:notifications:user:"
)

// RedisNotifier forwards lead domain events to Redis pub/sub for
// real-time UI refresh. Delivery is fire-and-forget: a publish failure
// is logged, never surfaced to the caller.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a notifier backed by a new Redis client
func NewRedisNotifier(cfg config.RedisConfig, logger *zap.Logger) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisNotifier{client: client, logger: logger}
}

// NewRedisNotifierWithClient creates a notifier sharing an existing client
func NewRedisNotifierWithClient(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Ping checks the Redis connection
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Close releases the Redis client
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// Handle publishes the event payload to the channel of the affected user
func (n *RedisNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	channel := BroadcastChannel
	if userID := assigneeOf(event); userID != "" {
		channel = UserChannelPrefix + userID
	}

	payload, err := json.Marshal(map[string]any{
		"event":        event.EventType(),
		"aggregate_id": event.AggregateID(),
		"occurred_at":  event.OccurredAt(),
		"data":         event,
	})
	if err != nil {
		return err
	}

	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		// At-most-once: a missed notification only delays UI awareness
		n.logger.Warn("notification publish failed",
			zap.String("channel", channel),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
	return nil
}

// EventTypes returns the lead events that produce notifications
func (n *RedisNotifier) EventTypes() []string {
	return []string{"LeadCreated", "LeadUpdated", "LeadAssigned", "LeadFollowupScheduled"}
}

func assigneeOf(event shared.DomainEvent) string {
	switch e := event.(type) {
	case *crm.LeadCreatedEvent:
		if e.AssignedUserID != nil {
			return e.AssignedUserID.String()
		}
	case *crm.LeadUpdatedEvent:
		if e.AssignedUserID != nil {
			return e.AssignedUserID.String()
		}
	case *crm.LeadAssignedEvent:
		if e.AssignedUserID != nil {
			return e.AssignedUserID.String()
		}
	case *crm.FollowupScheduledEvent:
		if e.AssignedUserID != nil {
			return e.AssignedUserID.String()
		}
	}
	return ""
}

// Ensure RedisNotifier implements EventHandler
var _ shared.EventHandler = (*RedisNotifier)(nil)

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Message is the envelope published for every domain event.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// RedisPublisher publishes domain events on a single pub/sub channel for
// whatever delivers notifications to users.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	body, err := json.Marshal(Message{
		ID:        id.String(),
		Type:      topic,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Nop drops every event. It is used when no REDIS_URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error {
	return nil
}

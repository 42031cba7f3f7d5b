package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/tracking-viewer/internal/core/domain"
	"github.com/99minutos/tracking-viewer/internal/core/ports"
)

const subscribeBuf = 16

// MarkerFeed publishes marker moves on Redis Pub/Sub. Nothing is stored:
// a subscriber only sees moves made while it is listening.
// Channel format: tracking:marker:<subject_id>
type MarkerFeed struct {
	client *redis.Client
}

var _ ports.MarkerPublisher = (*MarkerFeed)(nil)

// NewMarkerFeed wraps client.
func NewMarkerFeed(client *redis.Client) *MarkerFeed {
	return &MarkerFeed{client: client}
}

// Channel is the Pub/Sub channel carrying moves of subjectID.
func Channel(subjectID string) string {
	return "tracking:marker:" + subjectID
}

// Publish sends the move to current subscribers of its subject channel.
func (f *MarkerFeed) Publish(ctx context.Context, update domain.MarkerUpdate) error {
	_, err := f.PublishCount(ctx, update)
	return err
}

// PublishCount is Publish reporting the number of receiving subscribers.
func (f *MarkerFeed) PublishCount(ctx context.Context, update domain.MarkerUpdate) (int64, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return 0, fmt.Errorf("marker feed encode: %w", err)
	}
	n, err := f.client.Publish(ctx, Channel(update.SubjectID), data).Result()
	if err != nil {
		return 0, fmt.Errorf("marker feed publish: %w", err)
	}
	return n, nil
}

// Subscribe streams moves of subjectID until ctx is done. The returned channel
// is closed when the subscription ends. Undecodable messages are skipped.
func (f *MarkerFeed) Subscribe(ctx context.Context, subjectID string) (<-chan domain.MarkerUpdate, error) {
	sub := f.client.Subscribe(ctx, Channel(subjectID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("marker feed subscribe: %w", err)
	}

	out := make(chan domain.MarkerUpdate, subscribeBuf)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var u domain.MarkerUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping reports whether Redis is reachable.
func (f *MarkerFeed) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

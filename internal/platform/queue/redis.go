package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connect creates a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Publisher pushes notification IDs onto the delivery queue.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

func NewPublisher(rdb *redis.Client, queue string) *Publisher {
	return &Publisher{rdb: rdb, queue: queue}
}

func (p *Publisher) Publish(ctx context.Context, notificationID int64) error {
	if err := p.rdb.LPush(ctx, p.queue, notificationID).Err(); err != nil {
		return fmt.Errorf("push notification %d to %s: %w", notificationID, p.queue, err)
	}
	return nil
}

package events

import (
	"context"
	"delivery-sim-service/internal/domain"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const RedisChannel = "simulations.completed"

// RedisPublisher sends completed simulations over Redis pub/sub.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	timeout time.Duration
}

// NewRedisPublisher connects to the Redis server at url (redis://host:port/db).
func NewRedisPublisher(url string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: parse url: %w", err)
	}
	return NewRedisPublisherFromClient(redis.NewClient(opt)), nil
}

func NewRedisPublisherFromClient(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: RedisChannel, timeout: 2 * time.Second}
}

func (p *RedisPublisher) PublishSimulation(ctx context.Context, res *domain.SimulationResult) error {
	body, err := encodeEvent(res)
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", res.ID, err)
	}
	return nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

package ledger

import (
	"context"

	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/redis"
)

// ChangePublisher broadcasts a coalescing "inventory changed" signal after a
// committed mutation. Delivery is best effort; listeners reload on receipt.
type ChangePublisher interface {
	PublishChange(ctx context.Context)
}

// RedisChangePublisher emits change signals over the shared pub/sub channel.
type RedisChangePublisher struct {
	client *redis.Client
	logg   *logger.Logger
}

// NewRedisChangePublisher wires the publisher to the shared Redis client.
func NewRedisChangePublisher(client *redis.Client, logg *logger.Logger) *RedisChangePublisher {
	return &RedisChangePublisher{client: client, logg: logg}
}

// PublishChange emits a reload signal. Failures are logged and swallowed so a
// flaky broker never blocks a committed stock mutation.
func (p *RedisChangePublisher) PublishChange(ctx context.Context) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.Publish(ctx, redis.ChangeChannel, "reload"); err != nil && p.logg != nil {
		p.logg.Warn(ctx, "publish inventory change signal failed")
	}
}

// NopChangePublisher discards change signals. Used when Redis is not
// configured and in tests.
type NopChangePublisher struct{}

func (NopChangePublisher) PublishChange(context.Context) {}

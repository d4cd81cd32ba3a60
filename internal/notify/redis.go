package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTrigger is a WorkTrigger that appends a start-work event to a Redis
// stream consumed by an out-of-process worker fleet. Publishing is
// best-effort: a broker failure is logged and never fails the mutation that
// raised the signal.
type RedisTrigger struct {
	rdb    *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisTrigger creates a RedisTrigger publishing to stream.
func NewRedisTrigger(rdb *redis.Client, stream string, logger *slog.Logger) *RedisTrigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisTrigger{rdb: rdb, stream: stream, logger: logger}
}

// StartWork appends one event to the stream.
func (t *RedisTrigger) StartWork(ctx context.Context, reason string) {
	id, err := t.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: t.stream,
		Values: map[string]any{
			"event_id": uuid.NewString(),
			"reason":   reason,
		},
	}).Result()
	if err != nil {
		t.logger.Error("redis XADD failed", "stream", t.stream, "reason", reason, "error", err)
		return
	}
	t.logger.Debug("work trigger published", "stream", t.stream, "id", id, "reason", reason)
}

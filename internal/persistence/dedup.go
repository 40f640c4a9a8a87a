package persistence

import (
	"context"
	"time"
)

const dedupKeyPrefix = "webhook:msg:"

// MessageDedup remembers processed webhook message IDs in Redis so
// transport retries do not double-process an inbound message.
type MessageDedup struct {
	redis *Redis
	ttl   time.Duration
}

// NewMessageDedup builds the deduper; ttl bounds how long IDs are kept.
func NewMessageDedup(redis *Redis, ttl time.Duration) *MessageDedup {
	return &MessageDedup{redis: redis, ttl: ttl}
}

// FirstSeen reports whether the message ID has not been processed yet,
// claiming it atomically when so. Dedup is best effort: with Redis
// unavailable or no message ID supplied, every message counts as new.
func (d *MessageDedup) FirstSeen(ctx context.Context, messageID string) bool {
	if d == nil || d.redis == nil || d.redis.Client == nil || messageID == "" {
		return true
	}
	ok, err := d.redis.Client.SetNX(ctx, dedupKeyPrefix+messageID, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// TrackSnapshot is the cached shape of a tracking lookup.
type TrackSnapshot struct {
	Reference   string                 `json:"reference"`
	Status      domain.ComplaintStatus `json:"status"`
	SubmittedAt time.Time              `json:"submitted_at"`
	ResolvedAt  *time.Time             `json:"resolved_at,omitempty"`
	VerifiedAt  *time.Time             `json:"verified_at,omitempty"`
}

// TrackingCache shields the complaints table from repeated status polls for
// the same reference. Misses are not cached.
type TrackingCache interface {
	Get(ctx context.Context, reference string) (*TrackSnapshot, bool)
	Set(ctx context.Context, snapshot *TrackSnapshot)
	Invalidate(ctx context.Context, reference string)
}

type trackingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTrackingCache constructs the cache. A nil client yields a pass-through
// cache so the service runs without Redis.
func NewTrackingCache(client *redis.Client, ttl time.Duration) TrackingCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &trackingCache{client: client, ttl: ttl}
}

func trackingKey(reference string) string {
	return fmt.Sprintf("track:%s", reference)
}

func (c *trackingCache) Get(ctx context.Context, reference string) (*TrackSnapshot, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, trackingKey(reference)).Bytes()
	if err != nil {
		return nil, false
	}
	var snapshot TrackSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false
	}
	return &snapshot, true
}

func (c *trackingCache) Set(ctx context.Context, snapshot *TrackSnapshot) {
	if c.client == nil || snapshot == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, trackingKey(snapshot.Reference), raw, c.ttl).Err()
}

func (c *trackingCache) Invalidate(ctx context.Context, reference string) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, trackingKey(reference)).Err()
}

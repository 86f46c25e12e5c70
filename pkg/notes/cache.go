package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// ListCache holds denormalized per-clinician note listings in Redis so the
// dashboard read path skips the join on repeat loads. Every note mutation
// drops the owning clinician's entry. A nil cache disables caching.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if client == nil {
		return nil
	}
	return &ListCache{client: client, ttl: ttl}
}

func listKey(bcbaID int64) string {
	return fmt.Sprintf("session-notes:bcba:%d", bcbaID)
}

func (c *ListCache) Get(ctx context.Context, bcbaID int64) ([]models.SessionNoteDetail, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, listKey(bcbaID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Debug("Note list cache read failed")
		}
		return nil, false
	}

	var details []models.SessionNoteDetail
	if err := json.Unmarshal(raw, &details); err != nil {
		logger.Log.WithError(err).Warn("Dropping undecodable note list cache entry")
		c.Invalidate(ctx, bcbaID)
		return nil, false
	}
	return details, true
}

func (c *ListCache) Set(ctx context.Context, bcbaID int64, details []models.SessionNoteDetail) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listKey(bcbaID), raw, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Debug("Note list cache write failed")
	}
}

func (c *ListCache) Invalidate(ctx context.Context, bcbaID int64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, listKey(bcbaID)).Err(); err != nil {
		logger.Log.WithError(err).Debug("Note list cache invalidation failed")
	}
}

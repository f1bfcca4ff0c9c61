// Package cache provides a redis-backed read cache for list snapshots.
// Strictly best-effort: any redis failure degrades to a store read.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cartlog/internal/list"
	"cartlog/pkg/domain"
)

const keyPrefix = "cartlog:snapshot:"

// RedisSnapshot implements list.SnapshotCache. Mutations invalidate the
// owning list's key, so a cached snapshot never outlives the state it
// mirrors by more than the TTL.
type RedisSnapshot struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSnapshot(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSnapshot {
	return &RedisSnapshot{client: client, ttl: ttl, logger: logger}
}

type itemPayload struct {
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type snapshotPayload struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Items     []itemPayload `json:"items"`
}

func (c *RedisSnapshot) Get(ctx context.Context, listName string) (list.List, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+listName).Bytes()
	if errors.Is(err, redis.Nil) {
		return list.List{}, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "snapshot cache read failed", "list", listName, "error", err.Error())
		return list.List{}, false
	}

	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache entry corrupt", "list", listName, "error", err.Error())
		return list.List{}, false
	}
	id, err := domain.ParseListID(payload.ID)
	if err != nil {
		return list.List{}, false
	}

	snapshot := list.List{ID: id, Name: payload.Name, CreatedAt: payload.CreatedAt}
	for _, it := range payload.Items {
		snapshot.Items = append(snapshot.Items, list.Item{Name: it.Name, Quantity: it.Quantity, UpdatedAt: it.UpdatedAt})
	}
	return snapshot, true
}

func (c *RedisSnapshot) Set(ctx context.Context, snapshot list.List) {
	payload := snapshotPayload{
		ID:        snapshot.ID.String(),
		Name:      snapshot.Name,
		CreatedAt: snapshot.CreatedAt,
	}
	for _, it := range snapshot.Items {
		payload.Items = append(payload.Items, itemPayload{Name: it.Name, Quantity: it.Quantity, UpdatedAt: it.UpdatedAt})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+snapshot.Name, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache write failed", "list", snapshot.Name, "error", err.Error())
	}
}

func (c *RedisSnapshot) Invalidate(ctx context.Context, listName string) {
	if err := c.client.Del(ctx, keyPrefix+listName).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache invalidation failed", "list", listName, "error", err.Error())
	}
}

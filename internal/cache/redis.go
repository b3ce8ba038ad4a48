package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStroke is one stroke as retained in Redis. Source size is
// recorded per stroke; the record's coordinate space is the one the
// first stroke declared.
type CachedStroke struct {
	Points       [][2]float64 `json:"points"`
	Size         float64      `json:"size"`
	Color        string       `json:"color"`
	SourceWidth  float64      `json:"sourceWidth"`
	SourceHeight float64      `json:"sourceHeight"`
}

// RedisClient wraps the Redis client for signature retention. All
// methods are nil-receiver safe so the hub can run without Redis.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a new Redis client.
func NewRedisClient(addr, password string, db int, ttl time.Duration) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &RedisClient{client: client, ttl: ttl}, nil
}

func slotKey(roomID, side string, index int) string {
	return fmt.Sprintf("room:%s:sig:%s:%d", roomID, side, index)
}

// AppendStroke appends a stroke to the slot's retained record.
func (r *RedisClient) AppendStroke(ctx context.Context, roomID, side string, index int, s *CachedStroke) error {
	if r == nil {
		return nil
	}
	key := slotKey(roomID, side, index)

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		log.Printf("[Redis] Failed to append stroke: %v", err)
		return err
	}

	r.client.Expire(ctx, key, r.ttl)
	return nil
}

// GetStrokes retrieves the retained strokes for one slot.
func (r *RedisClient) GetStrokes(ctx context.Context, roomID, side string, index int) ([]CachedStroke, error) {
	if r == nil {
		return nil, nil
	}
	results, err := r.client.LRange(ctx, slotKey(roomID, side, index), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	strokes := make([]CachedStroke, 0, len(results))
	for _, data := range results {
		var s CachedStroke
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			continue
		}
		strokes = append(strokes, s)
	}

	return strokes, nil
}

// ClearSlot drops the retained record for one slot.
func (r *RedisClient) ClearSlot(ctx context.Context, roomID, side string, index int) error {
	if r == nil {
		return nil
	}
	return r.client.Del(ctx, slotKey(roomID, side, index)).Err()
}

// DeleteRoom removes every retained record for a room.
func (r *RedisClient) DeleteRoom(ctx context.Context, roomID string) error {
	if r == nil {
		return nil
	}
	iter := r.client.Scan(ctx, 0, fmt.Sprintf("room:%s:sig:*", roomID), 0).Iterator()
	for iter.Next(ctx) {
		r.client.Del(ctx, iter.Val())
	}
	return iter.Err()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

// Health checks if Redis is healthy.
func (r *RedisClient) Health(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

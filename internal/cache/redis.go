// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup; a
// nil client means the action history pipeline is disabled.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the historian service drains.
var DefaultQueueName = "svintus_actions"

// RoomActionRecord is one applied client action, queued for the historian.
type RoomActionRecord struct {
	RoomToken  uuid.UUID      `json:"room_token,omitempty"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ActionType string         `json:"action_type"`
	Payload    map[string]any `json:"payload,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client from environment
// variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// Enabled reports whether the action history pipeline is connected.
func Enabled() bool {
	return Rdb != nil
}

// PublishRoomAction serializes the record and pushes it onto the queue.
func PublishRoomAction(ctx context.Context, record RoomActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomActionRecord: %w", err)
	}

	queueName := getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", queueName, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

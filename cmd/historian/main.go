// cmd/historian is an asynchronous service that pops room action records from
// the Redis queue and persists them to the room_actions table in PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/svintus/svintus/internal/cache"
)

// HistorianService encapsulates the Redis and DB ends of the action pipeline.
type HistorianService struct {
	redisClient *redis.Client
	pool        *pgxpool.Pool
	batchSize   int
	flushDelay  time.Duration

	batchMu  sync.Mutex
	batch    []cache.RoomActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		batch:       make([]cache.RoomActionRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects the database and drains the queue until interrupted.
func (hs *HistorianService) Run() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}
	pool, err := pgxpool.New(hs.ctx, dbURL)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}
	hs.pool = pool
	defer pool.Close()

	go hs.readRedisLoop()

	log.Println("svintus-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("svintus-historian shutting down.")
}

// readRedisLoop continuously BLPops records off the queue, flushing the
// accumulated batch on size or on the flush ticker.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("HISTORIAN_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is noticed.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && hs.ctx.Err() == nil {
					log.Printf("[ERROR] BLPop: %v\n", err)
				}
				continue
			}
			if len(res) < 2 {
				continue
			}

			var record cache.RoomActionRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid action record: %v\n", err)
				continue
			}

			hs.batchMu.Lock()
			hs.batch = append(hs.batch, record)
			full := len(hs.batch) >= hs.batchSize
			hs.batchMu.Unlock()
			if full {
				hs.flushBatchToDB()
			}
		}
	}
}

// flushBatchToDB writes the pending batch to room_actions in one transaction.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	pending := hs.batch
	hs.batch = make([]cache.RoomActionRecord, 0, hs.batchSize)
	hs.batchMu.Unlock()

	err := pgx.BeginTxFunc(context.Background(), hs.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		INSERT INTO room_actions (room_token, actor_id, action_type, payload, created_at)
		VALUES ($1, $2, $3, $4, to_timestamp($5))
		`
		for _, rec := range pending {
			payload, err := json.Marshal(rec.Payload)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(context.Background(), q,
				rec.RoomToken, rec.ActorID, rec.ActionType, payload, rec.Timestamp,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush batch of %d records: %v\n", len(pending), err)
	}
}

func main() {
	hs := NewHistorianService()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		hs.cancelFn()
	}()

	hs.Run()
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

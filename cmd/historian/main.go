// cmd/historian/main.go drains finished-match records from the Redis queue
// and persists them to Postgres, decoupled from the game server process.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/cache"
	"tablehunt/internal/config"
	"tablehunt/internal/database"
	"tablehunt/internal/game"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.RedisAddr == "" || cfg.PostgresURL == "" {
		log.Fatal("historian requires REDIS_ADDR and POSTGRES_URL")
	}

	rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	pool, err := database.Connect(context.Background(), cfg.PostgresURL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tablehunt-historian started")
	for {
		res, err := rdb.BLPop(ctx, 3*time.Second, cache.MatchQueueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				logger.Info("tablehunt-historian shutting down")
				return
			}
			logger.Warnf("BLPop: %v", err)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var rec game.MatchRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			logger.Warnf("invalid match record: %v", err)
			continue
		}

		insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = database.InsertMatchRecord(insertCtx, pool, rec)
		cancel()
		if err != nil {
			logger.Warnf("persisting match record for room %s: %v", rec.Code, err)
		}
	}
}

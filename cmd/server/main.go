// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/auth"
	"tablehunt/internal/cache"
	"tablehunt/internal/config"
	"tablehunt/internal/database"
	"tablehunt/internal/game"
	"tablehunt/internal/handlers"
	"tablehunt/internal/middleware"
	"tablehunt/internal/question"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := auth.Init(); err != nil {
		log.Fatalf("auth init: %v", err)
	}

	pool, err := question.DefaultPool(cfg.Weights)
	if err != nil {
		log.Fatalf("question pool: %v", err)
	}

	settings := cfg.GameSettings()
	registry := game.NewRegistry(settings, logger)
	defer registry.Close()

	gateway := handlers.NewGateway(logger)
	engine := game.NewEngine(registry, pool, settings, gateway, logger)

	// Optional non-authoritative persistence. Failures here never block
	// gameplay; the process runs in-memory only when the mirror is absent.
	if cfg.PersistEnabled && cfg.PostgresURL != "" {
		db, err := database.Connect(context.Background(), cfg.PostgresURL)
		if err != nil {
			logger.Warnf("persistence disabled, db connect failed: %v", err)
		} else {
			writer := database.NewWriter(db, logger)
			defer writer.Close()
			engine.OnRoomChanged = writer.RecordRoom
			engine.OnMatchFinished = writer.RecordMatch
			logger.Info("Postgres mirror enabled")
		}
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Warnf("match queue disabled, redis connect failed: %v", err)
		} else {
			prev := engine.OnMatchFinished
			engine.OnMatchFinished = func(rec game.MatchRecord) {
				if prev != nil {
					prev(rec)
				}
				go func() {
					if err := cache.PublishMatchRecord(context.Background(), rdb, rec); err != nil {
						logger.Warnf("publishing match record: %v", err)
					}
				}()
			}
			logger.Info("Redis match queue enabled")
		}
	}

	srv := handlers.NewServer(engine, gateway, logger, cfg.AdminUser, cfg.AdminPassHash)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("POST /rooms", logged(http.HandlerFunc(srv.CreateRoomHandler)))
	mux.Handle("POST /rooms/{code}/join", logged(http.HandlerFunc(srv.JoinRoomHandler)))
	mux.Handle("POST /rooms/{code}/start", logged(http.HandlerFunc(srv.StartRoomHandler)))
	mux.Handle("GET /rooms/{code}/state", logged(http.HandlerFunc(srv.RoomStateHandler)))
	mux.Handle("GET /admin/rooms", logged(http.HandlerFunc(srv.AdminRoomsHandler)))
	mux.Handle("/ws", http.HandlerFunc(handlers.WSHandler(logger, srv)))

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	logger.Infof("tablehunt listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/svintus/svintus/internal/auth"
	"github.com/svintus/svintus/internal/cache"
	"github.com/svintus/svintus/internal/game"
	"github.com/svintus/svintus/internal/handlers"
	"github.com/svintus/svintus/internal/middleware"
	"github.com/svintus/svintus/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init: %v", err)
	}

	var st store.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := store.Migrate(dbURL); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		pg, err := store.NewPostgres(context.Background(), dbURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pg.Close()
		st = pg
		logger.Info("using postgres session store")
	} else {
		st = store.NewMemory()
		logger.Warn("DATABASE_URL not set, using in-memory session store")
	}

	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.Warnf("redis unavailable, action history disabled: %v", err)
		}
	} else {
		logger.Info("REDIS_ADDR not set, action history disabled")
	}

	engine := game.NewEngine(st, logger)
	srv := handlers.NewGameServer(engine, logger)

	mux := http.NewServeMux()
	mux.Handle("/game/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

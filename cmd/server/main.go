package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/swapspace/internal/auth"
	"github.com/ayush/swapspace/internal/config"
	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/server"
	"github.com/ayush/swapspace/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "swapspace: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	if cfg.UsesDevSecret() {
		log.Warn(ctx, "JWT_SECRET not set, signing tokens with the development secret")
	}

	deps := server.Deps{
		Tokens:      auth.NewTokenService(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL)),
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	}

	switch cfg.Storage {
	case config.StorageMemory:
		mem := store.NewMemoryStore()
		deps.Users, deps.Items, deps.Owners = mem, mem, mem
		log.Info(ctx, "using in-memory storage, data is lost on exit")

	case config.StorageDatabases:
		// ── PostgreSQL ────────────────────────────────────────────
		pgPool, err := store.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}

		// ── MongoDB ──────────────────────────────────────────────
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())
		if err := mongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongo ping: %w", err)
		}
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}

		// ── Redis ────────────────────────────────────────────────
		deps.Users, deps.Items, deps.Owners = pgStore, mongoStore, pgStore
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn(ctx, "owner cache disabled", "err", err)
		} else {
			defer rdb.Close()
			deps.Owners = store.NewOwnerCache(rdb, pgStore, cfg.OwnerCacheTTL, log)
		}
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

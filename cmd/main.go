package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"grouporder/aggregator"
	"grouporder/config"
	"grouporder/database"
	"grouporder/editor"
	"grouporder/logger"
	"grouporder/metrics"
	"grouporder/routes"
	"grouporder/store"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := database.ConnectMongo(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatal("MongoDB connection failed", "error", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	log.Info("Connected to MongoDB", "db", cfg.DBName)

	docs := store.NewMongo(database.InitCollections(client.Database(cfg.DBName)))

	var (
		sessions editor.SessionStore
		pingers  = []func(context.Context) error{func(ctx context.Context) error { return client.Ping(ctx, nil) }}
	)
	switch cfg.SessionBackend {
	case config.SessionsRedis:
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rdb, err := editor.DialRedis(rctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			log.Fatal("Redis connection failed", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		sessions = editor.NewRedisStore(rdb, cfg.SessionTTL, cfg.LockTTL())
		pingers = append(pingers, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	default:
		sessions = editor.NewMemoryStore(cfg.SessionTTL)
	}

	m := metrics.New()
	agg := aggregator.New(docs,
		aggregator.WithPolicy(aggregator.Policy(cfg.TotalPolicy)),
		aggregator.WithLogger(log.With("component", "aggregator")),
		aggregator.WithRecorder(m),
	)

	r := routes.NewEngine(routes.Deps{
		Config:     cfg,
		Log:        log,
		Metrics:    m,
		Users:      docs,
		Producers:  docs,
		Orders:     docs,
		Sessions:   sessions,
		Aggregator: agg,
		Health: func(c *gin.Context) error {
			hctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			for _, ping := range pingers {
				if err := ping(hctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "port", cfg.Port, "policy", cfg.TotalPolicy, "sessions", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
}

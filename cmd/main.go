package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-users-contract/config"
	"github.com/oksasatya/go-users-contract/internal/container"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/messaging"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/store"
	"github.com/oksasatya/go-users-contract/internal/router"
	"github.com/oksasatya/go-users-contract/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.Close()
	container.AddHealthCheck("store", st.Ping)
	logger.WithField("driver", st.Driver).Info("store ready")

	// Redis backs the query cache and the create rate limiter
	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb, 3*time.Second); err != nil {
			logger.WithError(err).Warn("redis unreachable; cache and rate limit will fail open")
		}
		container.SetRedis(rdb)
		container.AddHealthCheck("redis", func(ctx context.Context) error {
			return helpers.PingRedis(ctx, rdb, time.Second)
		})
	}

	if cfg.RabbitMQURL != "" {
		pub, err := messaging.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; users will be indexed inline")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; search disabled")
	} else if es != nil {
		container.SetES(es)
		container.AddHealthCheck("elasticsearch", func(ctx context.Context) error {
			return helpers.PingES(ctx, es, 2*time.Second)
		})
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepository(st.Repo)

	r := router.NewEngine()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-users-contract/config"
	"github.com/oksasatya/go-users-contract/internal/domain/event"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/messaging"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/search"
	"github.com/oksasatya/go-users-contract/pkg/helpers"
)

// user_indexer copies user.created events from RabbitMQ into Elasticsearch.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQUserEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	if es == nil {
		log.Fatal("Elasticsearch not configured")
	}
	index := search.NewUserIndex(es, cfg.ESUsersIndex)

	consumer, err := messaging.NewConsumer(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", consumer.Queue).Info("user indexer started")
	err = consumer.Run(ctx, func(ctx context.Context, e event.UserEvent) error {
		c, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := index.Index(c, e.User()); err != nil {
			helpers.LogError(logger, "index user failed", err, map[string]interface{}{"user_id": e.UserID})
			return err
		}
		helpers.LogInfo(logger, "user indexed", map[string]interface{}{"user_id": e.UserID})
		return nil
	})
	if err != nil {
		log.Fatalf("consume: %v", err)
	}
	logger.Info("user indexer stopped")
}

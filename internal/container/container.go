package container

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-contract/config"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/messaging"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional components
// (redis, rabbit, es) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	userRepo    repository.UserRepository
	redisClient *redis.Client
	rabbitPub   *messaging.Publisher
	esClient    *elasticsearch.Client
	healthCheck = map[string]func(ctx context.Context) error{}
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
func SetUserRepository(r repository.UserRepository) { userRepo = r }
func GetUserRepository() repository.UserRepository  { return userRepo }
func SetRedis(r *redis.Client)                      { redisClient = r }
func GetRedis() *redis.Client                       { return redisClient }
func SetRabbitPub(p *messaging.Publisher)           { rabbitPub = p }
func GetRabbitPub() *messaging.Publisher            { return rabbitPub }
func SetES(c *elasticsearch.Client)                 { esClient = c }
func GetES() *elasticsearch.Client                  { return esClient }

// AddHealthCheck registers a probe reporting whether a dependency is usable.
func AddHealthCheck(name string, fn func(ctx context.Context) error) { healthCheck[name] = fn }
func GetHealthChecks() map[string]func(ctx context.Context) error    { return healthCheck }

// Reset clears every component. Tests use it between wirings.
func Reset() {
	cfg, logger, userRepo, redisClient, rabbitPub, esClient = nil, nil, nil, nil, nil, nil
	healthCheck = map[string]func(ctx context.Context) error{}
}

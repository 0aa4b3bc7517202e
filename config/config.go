package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Storage backend: postgres, sqlite or memory
	StoreDriver   string
	SQLitePath    string
	SeedDemoUsers bool

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Query cache (Redis backed)
	CacheEnabled bool
	CacheTTL     time.Duration

	// Rate limiting on user creation
	RateLimitCreatePerMin int
	RateLimitAllowPrivate bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// RabbitMQ
	RabbitMQURL             string
	RabbitMQUserEventsQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool

	// Logging
	LogLevel       string // overrides the env default when set
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parsed reads key with parse, keeping def when unset or malformed.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		log.Printf("invalid value for %s: %v, using default %v", key, err, def)
		return def
	}
	return out
}

func getbool(key string, def bool) bool { return parsed(key, def, strconv.ParseBool) }

func getint(key string, def int) int { return parsed(key, def, strconv.Atoi) }

func getdur(key string, def time.Duration) time.Duration {
	return parsed(key, def, time.ParseDuration)
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "go-users-contract"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "3000"),
		GinMode: getenv("GIN_MODE", "release"),

		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", "postgres")),
		SQLitePath:    getenv("SQLITE_PATH", "users.db"),
		SeedDemoUsers: getbool("SEED_DEMO_USERS", false),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "appdb"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		CacheEnabled: getbool("CACHE_ENABLED", true),
		CacheTTL:     getdur("CACHE_TTL", 30*time.Second),

		RateLimitCreatePerMin: getint("RATE_LIMIT_CREATE_PER_MIN", 30),
		RateLimitAllowPrivate: getbool("RATE_LIMIT_ALLOW_PRIVATE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		RabbitMQURL:             getenv("RABBITMQ_URL", ""),
		RabbitMQUserEventsQueue: getenv("RABBITMQ_USER_EVENTS_QUEUE", "user_events"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "users"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),

		LogLevel:       getenv("LOG_LEVEL", ""),
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// PostgresDSN returns a pgx URL, escaping credentials.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

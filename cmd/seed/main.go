package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-users-contract/config"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/store"
	"github.com/oksasatya/go-users-contract/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.SeedDemoUsers = false
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.Close()

	n, err := store.Seed(ctx, st.Repo)
	if err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	if n == 0 {
		log.Println("users table not empty; nothing seeded")
		return
	}
	log.Printf("seeded %d demo users into %s", n, st.Driver)
}

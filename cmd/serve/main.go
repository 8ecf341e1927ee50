package main

import (
	"fmt"
	"log"

	"clinex/internal/config"
	"clinex/internal/handler"
	"clinex/internal/repository/postgres"
	"clinex/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	runRepo := postgres.NewRunRepo(db)
	judgmentRepo := postgres.NewJudgmentRepo(db)

	// Initialize handlers
	runH := handler.NewRunHandler(runRepo, judgmentRepo)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(runH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

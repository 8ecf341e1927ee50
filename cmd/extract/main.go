package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"clinex/internal/config"
	"clinex/internal/docload"
	"clinex/internal/email/noop"
	"clinex/internal/email/ses"
	"clinex/internal/llm"
	"clinex/internal/port"
	"clinex/internal/repository/postgres"
	"clinex/internal/service"
	s3storage "clinex/internal/storage/s3"

	// Register the model client factories.
	_ "clinex/internal/llm/claude"
	_ "clinex/internal/llm/gemini"
	_ "clinex/internal/llm/ollama"
	_ "clinex/internal/llm/openai"
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

	// Ctrl-C aborts the batch between model calls.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runRepo port.RunRepository
	var judgmentRepo port.JudgmentRepository
	if cfg.Run.StoreEnabled {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		runRepo = postgres.NewRunRepo(db)
		judgmentRepo = postgres.NewJudgmentRepo(db)
	}

	var sender port.EmailSender
	if cfg.Run.NotifyEmail != "" {
		switch cfg.Email.Provider {
		case "ses":
			sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
			if err != nil {
				return fmt.Errorf("failed to initialize SES sender: %w", err)
			}
		default:
			sender = noop.NewNoopSender()
		}
	}

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	loader := docload.NewLoader(cfg.Docs)
	svc := service.NewExtractService(cfg, loader, llm.New, runRepo, judgmentRepo, sender, storage)

	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	log.Printf("batch done: task=%s models=%s cases=%d failed=%d elapsed=%s",
		result.Task, strings.Join(result.Providers, ","),
		result.CasesTotal, result.CasesFailed, result.Elapsed)
	for _, f := range result.OutputFiles {
		log.Printf("  wrote %s", f)
	}
	return nil
}

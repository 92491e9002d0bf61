package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"assistbot/internal/bot"
	"assistbot/internal/config"
	"assistbot/internal/docs"
	"assistbot/internal/llm"
	"assistbot/internal/scheduler"
	"assistbot/internal/search"
	"assistbot/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	llmClient, err := llm.NewFactory(cfg).CreateClient()
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	searchClient := search.New(cfg.SearchBaseURL, cfg.RequestTimeout)

	b, err := bot.New(
		cfg.TelegramBotToken,
		store,
		llmClient,
		searchClient,
		docs.NewPDFExtractor(),
		cfg.AdminUserID,
		cfg.EnabledCommands,
		cfg.WorkerPoolSize,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if cfg.DigestEnabled && cfg.AdminUserID != 0 {
		sched := scheduler.New()
		sched.SetReportFunction(b.SendDailyDigest)
		if err := sched.Start(cfg.DigestCron); err != nil {
			log.Printf("failed to start scheduler: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b.Start(ctx)
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		return storage.OpenSQLite(cfg.SQLitePath)
	case config.DriverFile:
		return storage.NewFileStore(cfg.UsersFilePath, cfg.ChatsFilePath, cfg.FilesFilePath)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

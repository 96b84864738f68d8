package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	coreconfig "github.com/hussainn7/TravellingService/core/config"
	coredatabase "github.com/hussainn7/TravellingService/core/database"
	"github.com/hussainn7/TravellingService/core/logger"
	"github.com/hussainn7/TravellingService/core/telegram"
	"github.com/hussainn7/TravellingService/internal/chat"
	"github.com/hussainn7/TravellingService/internal/geo"
	"github.com/hussainn7/TravellingService/internal/history"
	"github.com/hussainn7/TravellingService/internal/openai"
	"github.com/hussainn7/TravellingService/internal/session"
	"github.com/hussainn7/TravellingService/internal/tourvisor"
)

const defaultConfigPath = "config.yaml"

func main() {
	// .env is optional; real deployments pass env directly.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		slog.Error("config load failed", slog.String("path", configPath), slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := logger.InitLogger(cfg); err != nil {
		slog.Error("logger init failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := chat.Options{
		Store:        session.NewStore(),
		Search:       tourvisor.NewClient(cfg.Tourvisor, nil),
		PollInterval: cfg.Tourvisor.PollInterval(),
		MaxWait:      cfg.Tourvisor.MaxWait(),
	}

	if cfg.OpenAI.APIKey != "" {
		ai := openai.NewClient(cfg.OpenAI, nil)
		opts.AI = ai
		opts.Resolver = geo.NewResolver(ai)
	} else {
		logger.Warn(ctx, "app", "openai.disabled")
		opts.Resolver = geo.NewResolver(nil)
	}

	if cfg.Database.Enabled() {
		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			logger.Error(ctx, "app", "db.connect", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		if err := coredatabase.RunMigrations(cfg.Database); err != nil {
			logger.Error(ctx, "app", "db.migrate", slog.String("err", err.Error()))
			os.Exit(1)
		}
		opts.History = history.NewStore(db)
	} else {
		logger.Info(ctx, "app", "history.disabled")
	}

	machine := chat.New(opts)

	logger.Info(ctx, "app", "start")
	if err := telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:  cfg,
		Handler: machine,
	}); err != nil {
		logger.Error(ctx, "app", "stop", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info(ctx, "app", "stop")
}

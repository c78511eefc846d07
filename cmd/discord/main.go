// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bernbot/internal/bot"
	"bernbot/internal/config"
	"bernbot/internal/discord"
	"bernbot/internal/logger"
	"bernbot/internal/service"
	"bernbot/internal/storage"
	v "bernbot/internal/version"
)

func main() {
	cfg, err := config.New("discord")
	if err != nil {
		boot, _ := logger.New("dev")
		boot.Fatal("invalid configuration", "error", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting", "app", v.String(), "storage", cfg.StoragePath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.StoragePath, cfg.BackupCount, log)
	if err != nil {
		log.Fatal("failed to open storage", "error", err)
	}

	dc, err := discord.New(cfg, log)
	if err != nil {
		log.Fatal("failed to create Discord session", "error", err)
	}
	selfID, err := dc.SelfID(ctx)
	if err != nil {
		log.Fatal("failed to identify the bot user", "error", err)
	}

	engine := store.LoadBot(bot.Options{
		SelfID:            selfID,
		DefaultPrefix:     cfg.DefaultPrefix,
		ContinuationDelay: cfg.ContinuationDelay,
		Logger:            log,
	})

	err = service.Run(ctx, cfg, log, engine, store, func(ctx context.Context) error {
		return dc.Serve(ctx, engine)
	})
	if err != nil {
		log.Error("bot stopped with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Info("bot exited cleanly")
}

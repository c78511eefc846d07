// Package service runs a transport next to the background jobs every
// deployment needs: autosave and the optional status API.
package service

import (
	"context"
	"fmt"

	"bernbot/internal/bot"
	"bernbot/internal/config"
	"bernbot/internal/logger"
	"bernbot/internal/status"
	"bernbot/internal/storage"
	"bernbot/pkg/jobmgr"
)

const (
	jobAutosave = "autosave"
	jobStatus   = "status"
)

// Run starts the background jobs, calls serve until it returns, then stops
// the jobs and waits for them, which includes the final save.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, engine *bot.Bot, store *storage.Storage, serve func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := jobmgr.NewManager(func(event string) {
		log.Info("job", "event", event)
	})
	if err := jobs.Start(ctx, jobAutosave, func(ctx context.Context) error {
		return store.RunAutosave(ctx, engine, cfg.AutosaveInterval)
	}); err != nil {
		return err
	}
	if cfg.StatusAddr != "" {
		srv := status.New(cfg.StatusAddr, status.Sources{
			Bot:     engine,
			Storage: store.Stats,
			Jobs:    jobs.List,
		}, log)
		if err := jobs.Start(ctx, jobStatus, srv.Run); err != nil {
			return err
		}
	}

	log.Info("background jobs started", "jobs", jobs.Status())

	serveErr := serve(ctx)

	// the status API goes first so nothing reads state during the final save
	if cfg.StatusAddr != "" {
		if err := jobs.Stop(jobStatus); err != nil {
			log.Debug("status job already gone", "error", err)
		}
	}
	jobs.StopAll()
	jobs.Wait()
	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}
	return nil
}

// /internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"bernbot/datastore"
	"bernbot/internal/bot"
	"bernbot/internal/logger"
)

// Storage persists the bot's state to one compressed snapshot file.
type Storage struct {
	ds  *datastore.DataStore
	log *logger.Logger
}

func New(filePath string, backupCount int, log *logger.Logger) (*Storage, error) {
	if log == nil {
		log = logger.Nop()
	}
	cfg := datastore.DefaultConfig(filePath)
	cfg.BackupCount = backupCount
	cfg.Logger = log
	ds, err := datastore.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds, log: log}, nil
}

// LoadBot restores the bot from the snapshot file. A missing, corrupt or
// unsupported file yields a fresh bot; the file itself is left alone until
// the next save backs it up.
func (s *Storage) LoadBot(opts bot.Options) *bot.Bot {
	var snap bot.Snapshot
	err := s.ds.Load(&snap)
	switch {
	case errors.Is(err, datastore.ErrNotFound):
		s.log.Info("no saved state, starting fresh", "file", s.ds.Path())
		return bot.New(opts)
	case err != nil:
		s.log.Warn("saved state is unreadable, starting fresh", "file", s.ds.Path(), "error", err)
		return bot.New(opts)
	}

	b, err := bot.Restore(opts, &snap)
	if err != nil {
		s.log.Warn("saved state is unusable, starting fresh", "file", s.ds.Path(), "error", err)
		return bot.New(opts)
	}
	st := b.Stats()
	s.log.Info("state restored", "file", s.ds.Path(), "channels", st.ListeningChannels, "authors", st.Authors)
	return b
}

// Save writes a snapshot of b.
func (s *Storage) Save(b *bot.Bot) error {
	return s.ds.Save(b.Snapshot())
}

// RunAutosave snapshots b every interval until ctx is done, then saves once more.
func (s *Storage) RunAutosave(ctx context.Context, b *bot.Bot, interval time.Duration) error {
	return s.ds.AutoSave(ctx, interval, func() any { return b.Snapshot() })
}

func (s *Storage) Stats() datastore.Stats {
	return s.ds.Stats()
}

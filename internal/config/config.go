// /internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment and an
// optional .env file in the working directory.
type Config struct {
	DiscordToken      string        `env:"DISCORD_TOKEN"`
	BotID             string        `env:"BOT_ID"`
	PresenceMessage   string        `env:"PRESENCE_MSG" envDefault:"with words"`
	StoragePath       string        `env:"STORAGE_PATH"`
	AutosaveInterval  time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"1m"`
	BackupCount       int           `env:"BACKUP_COUNT" envDefault:"3"`
	DefaultPrefix     string        `env:"DEFAULT_PREFIX" envDefault:"bern "`
	StatusAddr        string        `env:"STATUS_ADDR"`
	LogMode           string        `env:"LOG_MODE" envDefault:"dev"`
	ContinuationDelay time.Duration `env:"CONTINUATION_DELAY" envDefault:"500ms"`
}

// New loads .env (when present) and parses the environment. transport names
// the integration being started; it picks the default storage file so the
// Discord and console deployments never share state.
func New(transport string) (*Config, error) {
	// a missing .env is normal in containers
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "data_" + transport
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("AUTOSAVE_INTERVAL must be positive, got %s", c.AutosaveInterval)
	}
	if c.BackupCount < 0 {
		return fmt.Errorf("BACKUP_COUNT must not be negative, got %d", c.BackupCount)
	}
	if c.DefaultPrefix == "" {
		return fmt.Errorf("DEFAULT_PREFIX must not be empty")
	}
	if c.ContinuationDelay < 0 {
		return fmt.Errorf("CONTINUATION_DELAY must not be negative, got %s", c.ContinuationDelay)
	}
	return nil
}

// RequireDiscord reports an error when the Discord credentials are missing.
func (c *Config) RequireDiscord() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is not set")
	}
	return nil
}

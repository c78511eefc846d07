package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "")
	cfg, err := New("discord")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultPrefix != "bern " {
		t.Errorf("DefaultPrefix = %q", cfg.DefaultPrefix)
	}
	if cfg.StoragePath != "data_discord" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.AutosaveInterval != time.Minute {
		t.Errorf("AutosaveInterval = %s", cfg.AutosaveInterval)
	}
	if cfg.ContinuationDelay != 500*time.Millisecond {
		t.Errorf("ContinuationDelay = %s", cfg.ContinuationDelay)
	}
	if err := cfg.RequireDiscord(); err == nil {
		t.Error("RequireDiscord passed without a token")
	}
}

func TestOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("STORAGE_PATH", "/tmp/state.bin")
	t.Setenv("AUTOSAVE_INTERVAL", "30s")
	t.Setenv("DEFAULT_PREFIX", "!")

	cfg, err := New("discord")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoragePath != "/tmp/state.bin" || cfg.AutosaveInterval != 30*time.Second || cfg.DefaultPrefix != "!" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.RequireDiscord(); err != nil {
		t.Fatal(err)
	}
}

func TestInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	cases := map[string][2]string{
		"zero autosave":   {"AUTOSAVE_INTERVAL", "0s"},
		"negative backup": {"BACKUP_COUNT", "-1"},
		"bad duration":    {"AUTOSAVE_INTERVAL", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := New("console"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// Package datastore persists one snapshot value to a single compressed file.
//
// Writes are atomic (temp file, fsync, rename), skipped when the encoded
// value has not changed since the last save, verified by reading back, and
// preceded by a rotating timestamped backup of the previous file.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"bernbot/internal/logger"
)

// ErrNotFound is returned by Load when the file does not exist yet.
var ErrNotFound = errors.New("datastore: no saved state")

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Config holds configuration options for the DataStore
type Config struct {
	FilePath    string
	BackupCount int // number of backup files to keep, 0 disables backups
	Logger      *logger.Logger
}

// DefaultConfig returns a default configuration
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:    filePath,
		BackupCount: 3,
		Logger:      logger.Nop(),
	}
}

// DataStore reads and writes the snapshot file. Safe for concurrent use.
type DataStore struct {
	file         string
	config       *Config
	mu           sync.Mutex // serializes saves
	lastChecksum string     // checksum of last saved JSON
	lastSave     time.Time
	lastSize     int
}

// New creates a DataStore, creating the parent directory when needed.
func New(config *Config) (*DataStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.FilePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &DataStore{file: config.FilePath, config: config}, nil
}

// Path returns the snapshot file path.
func (ds *DataStore) Path() string {
	return ds.file
}

// Load decodes the saved snapshot into v. It returns ErrNotFound when no file
// exists; any other error means the file is unreadable or corrupt.
func (ds *DataStore) Load(v any) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	compressed, err := os.ReadFile(ds.file)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", ds.file, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}

	ds.lastChecksum = checksum(data)
	return nil
}

// Save encodes v and writes it when it differs from the last saved value.
func (ds *DataStore) Save(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	sum := checksum(data)
	if sum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			ds.config.Logger.Warn("failed to create backup", "file", ds.file, "error", err)
		}
	}

	compressed := encoder.EncodeAll(data, nil)
	if err := ds.writeFileAtomic(compressed); err != nil {
		return err
	}
	if err := ds.verifyFile(compressed); err != nil {
		return fmt.Errorf("file verification failed: %w", err)
	}

	ds.lastChecksum = sum
	ds.lastSave = time.Now()
	ds.lastSize = len(compressed)
	return nil
}

// AutoSave saves source() every interval until ctx is done, then saves once
// more. A failed cycle is logged and the loop keeps going; the in-memory
// state is untouched either way. The returned error is the final save's.
func (ds *DataStore) AutoSave(ctx context.Context, interval time.Duration, source func() any) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := ds.Save(source()); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			ds.config.Logger.Info("state saved on shutdown", "file", ds.file)
			return nil
		case <-ticker.C:
			if err := ds.Save(source()); err != nil {
				ds.config.Logger.Error("auto-save failed", "file", ds.file, "error", err)
			}
		}
	}
}

// writeFileAtomic performs atomic file write using temporary file and rename
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmpFile := ds.file + ".tmp"

	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile, ds.file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// verifyFile verifies that the written file matches expected data
func (ds *DataStore) verifyFile(expected []byte) error {
	actual, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("failed to read file for verification: %w", err)
	}
	if checksum(actual) != checksum(expected) {
		return fmt.Errorf("file checksum mismatch")
	}
	return nil
}

// createBackup copies the current file to a timestamped backup
func (ds *DataStore) createBackup() error {
	if _, err := os.Stat(ds.file); os.IsNotExist(err) {
		return nil
	}

	backupFile := fmt.Sprintf("%s.backup.%s", ds.file, time.Now().Format("20060102_150405.000000000"))

	src, err := os.Open(ds.file)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.cleanupOldBackups()
	return nil
}

// cleanupOldBackups removes the oldest backups beyond the configured limit
func (ds *DataStore) cleanupOldBackups() {
	matches, err := filepath.Glob(ds.file + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}

	// names embed a sortable timestamp
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-ds.config.BackupCount] {
		if err := os.Remove(path); err != nil {
			ds.config.Logger.Warn("failed to remove old backup", "file", path, "error", err)
		}
	}
}

// Stats describes the last successful save.
type Stats struct {
	FilePath string    `json:"file_path"`
	LastSave time.Time `json:"last_save"`
	Bytes    int       `json:"bytes"`
}

// Stats returns statistics about the DataStore
func (ds *DataStore) Stats() Stats {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return Stats{FilePath: ds.file, LastSave: ds.lastSave, Bytes: ds.lastSize}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

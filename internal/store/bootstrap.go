package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tuneport/support-assistant/pkg/logger"
)

// EnsureDatabase downloads the Chinook database to path when the file does
// not exist yet.
func EnsureDatabase(ctx context.Context, path, url string, log *logger.Logger) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	log.Info("downloading database", zap.String("url", url), zap.String("path", path))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download database: unexpected status %d", resp.StatusCode)
	}

	// Write to a temp file first so a partial download never looks like a
	// usable database.
	tmp, err := os.CreateTemp(filepath.Dir(path), "chinook-*.db")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write database file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close database file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move database file: %w", err)
	}

	log.Info("database downloaded", zap.String("path", path))
	return nil
}

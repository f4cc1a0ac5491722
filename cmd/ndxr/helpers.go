package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/dnakoni/nakodx-file-retriever/internal/config"
	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/metacache"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
	"github.com/dnakoni/nakodx-file-retriever/internal/storage"
)

// newStore builds the metadata cache store for this run. Toggling
// caching off wipes both partitions immediately, so a later re-enable
// starts from a clean slate.
func newStore(ctx context.Context, cfg *config.Config) (*metacache.Store, error) {
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, err
	}
	s := metacache.New(dir, cfg.TTL(), cfg.EnableCache)
	if !cfg.EnableCache {
		s.PurgeAll(ctx)
	}
	return s, nil
}

// cacheDir resolves the cache root, honoring the config override.
func cacheDir(cfg *config.Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	base, err := storage.Dir()
	if err != nil {
		return "", fmt.Errorf("locate cache directory: %w", err)
	}
	return filepath.Join(base, "cache"), nil
}

// newClient builds the CLI client rooted at the workspace directory.
func newClient(cfg *config.Config) *nakodx.Client {
	return nakodx.NewClient(cfg.Tool, workDir)
}

// requireTTY rejects interactive commands when stdin is not a terminal.
func requireTTY() error {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil
	}
	return fmt.Errorf("interactive selection requires a terminal; use --type and --name instead")
}

// reportError normalizes a workflow failure for presentation. The full
// structured detail always lands in the diagnostic log even though the
// surfaced message is abbreviated; cancellation stays silent.
func reportError(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	var cerr *nakodx.CLIError
	if errors.As(err, &cerr) {
		if path, logErr := appendDiagnostic(cerr); logErr == nil {
			return fmt.Errorf("%s (details: %s)", cerr.Message, path)
		} else {
			log.FromContext(ctx).Debug("write diagnostic log failed", "err", logErr)
		}
	}
	return err
}

// appendDiagnostic appends the full structured error detail to the
// diagnostic log and returns its path.
func appendDiagnostic(cerr *nakodx.CLIError) (string, error) {
	base, err := storage.Dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(base, "diagnostic.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "--- %s\n%s\n", time.Now().Format(time.RFC3339), cerr.Detail()); err != nil {
		return "", err
	}
	return path, nil
}

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnakoni/nakodx-file-retriever/internal/config"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
)

func TestReportError(t *testing.T) {
	ctx := context.Background()

	t.Run("nil passes through", func(t *testing.T) {
		if err := reportError(ctx, nil); err != nil {
			t.Errorf("reportError(nil) = %v", err)
		}
	})

	t.Run("cancellation is silent", func(t *testing.T) {
		if err := reportError(ctx, context.Canceled); err != nil {
			t.Errorf("reportError(canceled) = %v", err)
		}
	})

	t.Run("plain error unchanged", func(t *testing.T) {
		plain := errors.New("boom")
		if err := reportError(ctx, plain); err != plain {
			t.Errorf("reportError = %v, want original", err)
		}
	})

	t.Run("cli error appends diagnostic", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cerr := &nakodx.CLIError{Message: "No access", Code: "FORBIDDEN", ExitCode: 1}
		err := reportError(ctx, cerr)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "No access") {
			t.Errorf("err = %q, want message", err)
		}
		if !strings.Contains(err.Error(), "diagnostic.log") {
			t.Errorf("err = %q, want diagnostic path hint", err)
		}

		home, _ := os.UserHomeDir()
		data, readErr := os.ReadFile(filepath.Join(home, ".ndxr", "diagnostic.log"))
		if readErr != nil {
			t.Fatalf("diagnostic log not written: %v", readErr)
		}
		if !strings.Contains(string(data), "FORBIDDEN") {
			t.Errorf("diagnostic log = %q, want full detail", data)
		}
	})
}

func TestCacheDir(t *testing.T) {
	t.Run("config override wins", func(t *testing.T) {
		dir, err := cacheDir(&config.Config{CacheDir: "/custom/cache"})
		if err != nil {
			t.Fatal(err)
		}
		if dir != "/custom/cache" {
			t.Errorf("cacheDir = %q", dir)
		}
	})

	t.Run("defaults under the data dir", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		dir, err := cacheDir(&config.Config{})
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(dir) != "cache" || !strings.Contains(dir, ".ndxr") {
			t.Errorf("cacheDir = %q, want <home>/.ndxr/cache", dir)
		}
	})
}

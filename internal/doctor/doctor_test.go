package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnakoni/nakodx-file-retriever/internal/metacache"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
	"github.com/dnakoni/nakodx-file-retriever/internal/storage"
)

func writeEntry(t *testing.T, path string, data any) {
	t.Helper()
	if err := storage.SaveJSON(path, data); err != nil {
		t.Fatal(err)
	}
}

func TestCheckCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ttl := 24 * time.Hour
	now := time.Now()

	writeEntry(t, filepath.Join(dir, "types", "00Dxx.json"), metacache.TypeEntry{
		OrgID:     "00Dxx",
		Types:     []nakodx.MetadataType{{XMLName: "ApexClass"}},
		WrittenAt: now,
	})
	writeEntry(t, filepath.Join(dir, "types", "00Dyy.json"), metacache.TypeEntry{
		OrgID:     "00Dyy",
		WrittenAt: now.Add(-25 * time.Hour), // expired
	})
	writeEntry(t, filepath.Join(dir, "items", "00Dxx-ApexClass.json"), metacache.ItemEntry{
		OrgID:     "00Dxx",
		TypeName:  "ApexClass",
		WrittenAt: now,
	})
	writeEntry(t, filepath.Join(dir, "items", "00Dxx-Mismatch.json"), metacache.ItemEntry{
		OrgID:     "00Dzz", // file name says 00Dxx
		TypeName:  "Mismatch",
		WrittenAt: now,
	})
	writeEntry(t, filepath.Join(dir, "items", "00Dxx-NoType.json"), metacache.ItemEntry{
		OrgID:     "00Dxx",
		WrittenAt: now,
	})
	if err := os.WriteFile(filepath.Join(dir, "items", "00Dxx-Garbage.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stats Stats
	issues := checkCache(context.Background(), dir, ttl, &stats)

	if stats.CacheValid != 2 {
		t.Errorf("CacheValid = %d, want 2", stats.CacheValid)
	}
	if stats.CacheIssues != 4 {
		t.Errorf("CacheIssues = %d, want 4", stats.CacheIssues)
	}
	if len(issues) != 4 {
		t.Fatalf("got %d issues, want 4", len(issues))
	}
	for _, issue := range issues {
		if !issue.Fixable {
			t.Errorf("cache issue %q not fixable", issue.Key)
		}
		if issue.Category != CategoryCache {
			t.Errorf("issue %q category = %q", issue.Key, issue.Category)
		}
	}
}

func TestCheckCache_ZeroTimestampNeverExpires(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeEntry(t, filepath.Join(dir, "types", "00Dxx.json"), metacache.TypeEntry{
		OrgID: "00Dxx",
	})

	var stats Stats
	issues := checkCache(context.Background(), dir, time.Hour, &stats)
	if len(issues) != 0 {
		t.Errorf("got %d issues, want 0: %+v", len(issues), issues)
	}
	if stats.CacheValid != 1 {
		t.Errorf("CacheValid = %d, want 1", stats.CacheValid)
	}
}

func TestCheckCache_MissingDir(t *testing.T) {
	t.Parallel()

	var stats Stats
	issues := checkCache(context.Background(), filepath.Join(t.TempDir(), "nope"), time.Hour, &stats)
	if len(issues) != 0 || stats.CacheValid != 0 {
		t.Errorf("expected clean result for missing cache dir, got %+v", issues)
	}
}

func TestFixIssues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	issues := []Issue{
		{Key: "broken.json", Category: CategoryCache, Fixable: true, FixPath: broken},
		{Key: "target-org", Category: CategoryEnv}, // not fixable
	}
	if err := fixIssues(context.Background(), issues); err != nil {
		t.Fatalf("fixIssues: %v", err)
	}
	if _, err := os.Stat(broken); !os.IsNotExist(err) {
		t.Error("broken cache file was not removed")
	}
}

package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dnakoni/nakodx-file-retriever/internal/config"
	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/metacache"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
	"github.com/dnakoni/nakodx-file-retriever/internal/storage"
)

// Run performs diagnostic checks and optionally fixes cache issues.
// cacheDir is the resolved cache root the store would use.
func Run(ctx context.Context, cfg *config.Config, client *nakodx.Client, cacheDir string, fix bool) error {
	p := output.FromContext(ctx)

	var issues []Issue
	var stats Stats

	p.Println("Checking environment...")
	issues = append(issues, checkEnv(ctx, cfg, client)...)

	p.Println("Checking config...")
	issues = append(issues, checkConfig()...)

	p.Println("Checking cache files...")
	cacheIssues := checkCache(ctx, cacheDir, cfg.TTL(), &stats)
	issues = append(issues, cacheIssues...)

	p.Printf("\n  %d cache files valid\n", stats.CacheValid)
	if stats.CacheIssues > 0 {
		p.Printf("  %d cache files with issues\n", stats.CacheIssues)
	}

	if len(issues) == 0 {
		p.Println("\nNo issues found")
		return nil
	}

	p.Printf("\nFound %d issues:\n", len(issues))
	printByCategory(ctx, issues)

	if fix {
		return fixIssues(ctx, issues)
	}

	p.Println("\nRun 'ndxr doctor --fix' to remove broken cache files.")
	return nil
}

// checkEnv verifies the external CLI is installed and an org identity
// can be resolved through it.
func checkEnv(ctx context.Context, cfg *config.Config, client *nakodx.Client) []Issue {
	var issues []Issue

	if _, err := exec.LookPath(cfg.Tool); err != nil {
		issues = append(issues, Issue{
			Key:         cfg.Tool,
			Description: fmt.Sprintf("%q not found in PATH; install it or set tool in the config file", cfg.Tool),
			Category:    CategoryEnv,
		})
		// Resolution would shell out to the same missing binary
		return issues
	}

	if client.ResolveOrgID(ctx) == "" {
		issues = append(issues, Issue{
			Key:         "target-org",
			Description: "no org identity could be resolved; caching is bypassed until a default org is set",
			Category:    CategoryEnv,
		})
	}
	return issues
}

// checkConfig reports a config file that exists but does not parse.
func checkConfig() []Issue {
	path, err := config.Path()
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil // no config file is fine, defaults apply
	}
	if _, err := config.LoadFrom(path); err != nil {
		return []Issue{{
			Key:         path,
			Description: err.Error(),
			Category:    CategoryConfig,
		}}
	}
	return nil
}

// checkCache scans both cache partitions for unreadable, malformed or
// expired files. Every issue it reports is fixable by deletion.
func checkCache(ctx context.Context, dir string, ttl time.Duration, stats *Stats) []Issue {
	var issues []Issue

	report := func(path, desc string) {
		stats.CacheIssues++
		issues = append(issues, Issue{
			Key:         filepath.Base(path),
			Description: desc,
			Category:    CategoryCache,
			Fixable:     true,
			FixPath:     path,
		})
	}

	expired := func(writtenAt time.Time) bool {
		return !writtenAt.IsZero() && time.Since(writtenAt) >= ttl
	}

	for _, path := range cacheFiles(ctx, filepath.Join(dir, "types")) {
		var e metacache.TypeEntry
		switch {
		case storage.LoadJSON(path, &e) != nil:
			report(path, "unreadable or malformed type catalog")
		case e.OrgID == "":
			report(path, "type catalog without an org identity")
		case expired(e.WrittenAt):
			report(path, "type catalog past its TTL")
		default:
			stats.CacheValid++
		}
	}

	for _, path := range cacheFiles(ctx, filepath.Join(dir, "items")) {
		var e metacache.ItemEntry
		switch {
		case storage.LoadJSON(path, &e) != nil:
			report(path, "unreadable or malformed item list")
		case e.OrgID == "" || e.TypeName == "":
			report(path, "item list without an org identity or type name")
		case !strings.HasPrefix(filepath.Base(path), e.OrgID+"-"):
			report(path, fmt.Sprintf("file name does not match org %s", e.OrgID))
		case expired(e.WrittenAt):
			report(path, "item list past its TTL")
		default:
			stats.CacheValid++
		}
	}

	return issues
}

// cacheFiles lists the JSON files in one cache partition.
func cacheFiles(ctx context.Context, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.FromContext(ctx).Debug("read cache partition failed", "dir", dir, "err", err)
		}
		return nil
	}
	var paths []string
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, de.Name()))
	}
	return paths
}

// printByCategory groups and prints issues.
func printByCategory(ctx context.Context, issues []Issue) {
	p := output.FromContext(ctx)

	byCategory := make(map[IssueCategory][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	names := map[IssueCategory]string{
		CategoryEnv:    "Environment issues",
		CategoryConfig: "Config issues",
		CategoryCache:  "Cache issues",
	}

	for _, cat := range []IssueCategory{CategoryEnv, CategoryConfig, CategoryCache} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}
		p.Printf("\n%s:\n", names[cat])
		for _, issue := range catIssues {
			p.Printf("  - %s: %s\n", issue.Key, issue.Description)
		}
	}
}

// fixIssues deletes the files behind every fixable issue.
func fixIssues(ctx context.Context, issues []Issue) error {
	p := output.FromContext(ctx)

	var fixed, skipped int
	for _, issue := range issues {
		if !issue.Fixable {
			skipped++
			continue
		}
		if err := os.Remove(issue.FixPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", issue.FixPath, err)
		}
		fixed++
	}

	p.Printf("\nRemoved %d broken cache files", fixed)
	if skipped > 0 {
		p.Printf(", %d issues need manual attention", skipped)
	}
	p.Println("")
	return nil
}

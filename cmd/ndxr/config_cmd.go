package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/config"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Config prints the settings in effect for this run, merged from the
config file and built-in defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := output.FromContext(cmd.Context())

			path, err := config.Path()
			if err == nil {
				if _, statErr := os.Stat(path); statErr != nil {
					path += " (not present, using defaults)"
				}
			} else {
				path = "unknown"
			}

			p.Printf("Config file:    %s\n", path)
			p.Printf("tool:           %s\n", cfg.Tool)
			p.Printf("enable_cache:   %t\n", cfg.EnableCache)
			p.Printf("cache_ttl_days: %d\n", cfg.CacheTTLDays)
			p.Printf("auto_open:      %t\n", cfg.AutoOpen)
			if cfg.CacheDir != "" {
				p.Printf("cache_dir:      %s\n", cfg.CacheDir)
			}
			return nil
		},
	}
}

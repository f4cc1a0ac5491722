package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
	"github.com/dnakoni/nakodx-file-retriever/internal/ui/prompt"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the metadata cache",
	}

	cmd.AddCommand(newCacheInfoCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := output.FromContext(ctx)

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			store.Preload(ctx)

			enabled := "enabled"
			if !store.Enabled() {
				enabled = "disabled"
			}
			_, items := store.Counts()

			p.Printf("Cache:     %s\n", enabled)
			p.Printf("Directory: %s\n", store.Dir())
			p.Printf("TTL:       %d days\n", cfg.CacheTTLDays)
			p.Printf("Item lists on disk (fresh): %d\n", items)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear [types|items|all]",
		Short: "Clear cached metadata for the active org",
		Long: `Clear removes cached entries. "types" drops the active org's type
catalog, "items" drops its item lists, and "all" wipes the whole cache
across every org. The default is "all".`,
		Example: `  ndxr cache clear types
  ndxr cache clear items
  ndxr cache clear all --force`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"types", "items", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			scope := "all"
			if len(args) == 1 {
				scope = args[0]
			}

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}

			if scope == "all" {
				if !force {
					if err := requireTTY(); err != nil {
						return fmt.Errorf("refusing to clear the full cache without --force")
					}
					res, err := prompt.Confirm("Clear the entire metadata cache for all orgs?")
					if err != nil {
						return err
					}
					if !res.Confirmed || res.Cancelled {
						l.Println("Aborted")
						return nil
					}
				}
				store.PurgeAll(ctx)
				l.Println("Cache cleared")
				return nil
			}

			orgID := newClient(cfg).ResolveOrgID(ctx)
			if orgID == "" {
				return fmt.Errorf("cannot determine the active org; run 'ndxr cache clear all' to wipe everything")
			}

			switch scope {
			case "types":
				store.ClearTypes(ctx, orgID)
				l.Printf("Type catalog cleared for org %s\n", orgID)
			case "items":
				store.ClearItems(ctx, orgID)
				l.Printf("Item lists cleared for org %s\n", orgID)
			default:
				return fmt.Errorf("unknown scope %q (expected types, items or all)", scope)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

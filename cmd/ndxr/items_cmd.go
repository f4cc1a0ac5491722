package main

import (
	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
	"github.com/dnakoni/nakodx-file-retriever/internal/retrieve"
)

func newItemsCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "items <type>",
		Short: "List the items of one metadata type in the active org",
		Long: `Items prints the full names of every item of the given metadata type.
Lists are cached per (org, type) pair; --refresh discards the cached
copy first.`,
		Example: `  ndxr items ApexClass
  ndxr items CustomObject --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)
			typeName := args[0]

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			store.Preload(ctx)
			defer store.Flush()

			client := newClient(cfg)
			orgID := client.ResolveOrgID(ctx)
			if refresh {
				store.ClearItems(ctx, orgID)
			}

			svc := &retrieve.Service{Client: client, Cache: store, WorkDir: workDir}
			items, err := svc.ItemList(ctx, orgID, typeName)
			if err != nil {
				return reportError(ctx, err)
			}

			l.Printf("%d %s items\n", len(items), typeName)
			for _, it := range items {
				if it.FileName != "" && l.IsVerbose() {
					p.Printf("%s\t%s\n", it.FullName, it.FileName)
					continue
				}
				p.Println(it.FullName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard the cached item lists and refetch")

	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
	"github.com/dnakoni/nakodx-file-retriever/internal/retrieve"
)

func newTypesCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the metadata types available in the active org",
		Long: `Types prints the org's metadata type catalog, one XML name per line.
The catalog is cached per org; --refresh discards the cached copy first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Flush()

			client := newClient(cfg)
			orgID := client.ResolveOrgID(ctx)
			if refresh {
				store.ClearTypes(ctx, orgID)
			}

			svc := &retrieve.Service{Client: client, Cache: store, WorkDir: workDir}
			types, err := svc.TypeCatalog(ctx, orgID)
			if err != nil {
				return reportError(ctx, err)
			}

			l.Printf("%d metadata types\n", len(types))
			for _, mt := range types {
				if mt.DirectoryName != "" && l.IsVerbose() {
					p.Printf("%s\t%s\n", mt.XMLName, mt.DirectoryName)
					continue
				}
				p.Println(mt.XMLName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard the cached catalog and refetch")

	return cmd
}

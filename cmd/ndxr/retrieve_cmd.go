package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
	"github.com/dnakoni/nakodx-file-retriever/internal/open"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
	"github.com/dnakoni/nakodx-file-retriever/internal/retrieve"
	"github.com/dnakoni/nakodx-file-retriever/internal/ui/progress"
	"github.com/dnakoni/nakodx-file-retriever/internal/ui/prompt"
)

// tuiPicker adapts the prompt package to the retrieve.Picker interface.
type tuiPicker struct{}

func (tuiPicker) Pick(_ context.Context, title string, options []retrieve.Option) (int, bool, error) {
	opts := make([]prompt.Option, len(options))
	for i, o := range options {
		opts[i] = prompt.Option{Label: o.Label, Description: o.Description, Detail: o.Detail}
	}
	res, err := prompt.Select(title, opts)
	if err != nil {
		return 0, false, err
	}
	return res.Index, res.Cancelled, nil
}

// spinnerClient shows a spinner while a CLI invocation is in flight.
// Cache hits never reach the client, so no spinner flashes for them.
type spinnerClient struct {
	retrieve.Client
}

func (c spinnerClient) withSpinner(msg string, fn func() error) error {
	sp := progress.NewSpinner(msg)
	sp.Start()
	defer sp.Stop()
	return fn()
}

func (c spinnerClient) ListTypes(ctx context.Context) (types []nakodx.MetadataType, err error) {
	err = c.withSpinner("Fetching metadata types...", func() error {
		types, err = c.Client.ListTypes(ctx)
		return err
	})
	return types, err
}

func (c spinnerClient) ListItems(ctx context.Context, typeName string) (items []nakodx.MetadataItem, err error) {
	err = c.withSpinner(fmt.Sprintf("Fetching %s items...", typeName), func() error {
		items, err = c.Client.ListItems(ctx, typeName)
		return err
	})
	return items, err
}

func (c spinnerClient) Retrieve(ctx context.Context, typeName, fullName string) (res *nakodx.RetrieveResult, raw json.RawMessage, err error) {
	err = c.withSpinner(fmt.Sprintf("Retrieving %s %s...", typeName, fullName), func() error {
		res, raw, err = c.Client.Retrieve(ctx, typeName, fullName)
		return err
	})
	return res, raw, err
}

func newRetrieveCmd() *cobra.Command {
	var (
		typeName   string
		itemName   string
		noOpen     bool
		copyToClip bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Pick and retrieve a metadata item from the active org",
		Long: `Retrieve walks through type and item selection, downloads the chosen
artifact and optionally opens the resulting file.

Catalogs and item lists are served from the local cache when fresh;
use 'ndxr cache clear' to force a refetch.`,
		Example: `  ndxr retrieve                              # fully interactive
  ndxr retrieve --type ApexClass             # skip type selection
  ndxr retrieve --type ApexClass --name Foo  # no prompts at all
  ndxr retrieve --copy                       # copy retrieved path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			interactive := typeName == "" || itemName == ""
			if interactive {
				if err := requireTTY(); err != nil {
					return err
				}
			}

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			store.Preload(ctx)
			defer store.Flush()

			var client retrieve.Client = newClient(cfg)
			if interactive {
				client = spinnerClient{Client: client}
			}

			svc := &retrieve.Service{
				Client:   client,
				Cache:    store,
				Picker:   tuiPicker{},
				Opener:   open.OS{},
				WorkDir:  workDir,
				AutoOpen: cfg.AutoOpen && !noOpen,
			}

			res, err := svc.Run(ctx, typeName, itemName)
			if err != nil {
				return reportError(ctx, err)
			}
			if res.Cancelled {
				l.Println("Selection cancelled")
				return nil
			}

			l.Printf("Retrieved %s %s (%d files)\n", res.TypeName, res.ItemName, len(res.Files))
			for _, f := range res.Files {
				p.Println(f.FilePath)
			}

			if copyToClip && len(res.Files) > 0 {
				path := res.Opened
				if path == "" {
					path = res.Files[0].FilePath
				}
				if err := clipboard.WriteAll(path); err != nil {
					l.Printf("Warning: failed to copy to clipboard: %v\n", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "Metadata type (skips type selection)")
	cmd.Flags().StringVar(&itemName, "name", "", "Item full name (skips item selection)")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Do not open the retrieved file")
	cmd.Flags().BoolVar(&copyToClip, "copy", false, "Copy the retrieved file path to the clipboard")

	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/config"
	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/output"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg     *config.Config
	workDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ndxr",
	Short: "Retrieve org metadata through the nakodx CLI",
	Long: `ndxr wraps the nakodx CLI to browse and retrieve metadata from the
active org. Type catalogs and item lists are cached locally so repeated
runs avoid redundant round-trips to the org.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	// Run is not set - shows help when no subcommand provided

	// Runs after flag parsing, so --verbose/--quiet have their final
	// values when the logger is built.
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cmd.SetContext(commandContext(cmd.Context()))
	},
}

// commandContext attaches the logger and printer, bound to the parsed
// global flag values. Logger on stderr for diagnostics, printer on
// stdout for data.
func commandContext(parent context.Context) context.Context {
	ctx := log.WithLogger(parent, log.New(os.Stderr, verbose, quiet))
	return output.WithPrinter(ctx, os.Stdout)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Config is re-read on every run so changes apply immediately
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	workDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndxr: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'ndxr -h' for help")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newRetrieveCmd())
	rootCmd.AddCommand(newTypesCmd())
	rootCmd.AddCommand(newItemsCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())
}

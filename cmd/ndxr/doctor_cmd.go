package main

import (
	"github.com/spf13/cobra"

	"github.com/dnakoni/nakodx-file-retriever/internal/doctor"
)

func newDoctorCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment and the metadata cache",
		Long: `Doctor checks that the external CLI is installed, the config file
parses and every on-disk cache file is readable, well-formed and within
its TTL. With --fix, broken cache files are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir(cfg)
			if err != nil {
				return err
			}
			return doctor.Run(cmd.Context(), cfg, newClient(cfg), dir, fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Remove broken cache files")

	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jonny/edudiag/internal/adapter/inbound/cli"
	"github.com/jonny/edudiag/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Version(cmd.OutOrStdout(), output, version.Get())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", cli.FormatHuman, "output format (human, json, yaml)")
	return cmd
}

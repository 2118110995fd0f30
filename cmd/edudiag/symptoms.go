package main

import (
	"github.com/spf13/cobra"

	"github.com/jonny/edudiag/internal/adapter/inbound/cli"
	"github.com/jonny/edudiag/internal/domain/model"
)

func newSymptomsCmd(_ *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "symptoms",
		Short: "List the recognised symptom descriptions per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.Symptoms(cmd.OutOrStdout(), output, model.Vocabulary())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", cli.FormatHuman, "output format (human, json, yaml)")
	return cmd
}

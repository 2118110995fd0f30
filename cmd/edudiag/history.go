package main

import (
	"github.com/spf13/cobra"

	"github.com/jonny/edudiag/internal/adapter/inbound/cli"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		filter outbound.HistoryFilter
		page   outbound.PageRequest
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded diagnoses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), root.cfg, root.logger, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.diagnoser.History(cmd.Context(), filter, page)
			if err != nil {
				return err
			}
			return cli.History(cmd.OutOrStdout(), output, res.Items, res.TotalCount)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", cli.FormatHuman, "output format (human, json, yaml)")
	f.StringVar(&filter.ProblemType, "problem-type", "", "only entries of this category")
	f.StringVar(&filter.Cause, "cause", "", "only entries with this cause")
	f.IntVar(&page.Page, "page", 1, "page number")
	f.IntVar(&page.Size, "limit", outbound.DefaultPageSize, "entries per page")
	return cmd
}

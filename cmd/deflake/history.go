package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/deflake/internal/history"
	"github.com/dkoosis/deflake/internal/mapper"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reconciliation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.History
			if path == "" {
				var err error
				if path, err = history.DefaultPath(); err != nil {
					return err
				}
			}
			store, err := history.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonMode() {
				return a.emitJSON(runs)
			}
			return a.emit(mapper.FromRuns(runs))
		},
	}
	cmd.Flags().StringVar(&a.flags.History, "history", "", "build history database (default <config dir>/deflake/history.db)")
	return cmd
}

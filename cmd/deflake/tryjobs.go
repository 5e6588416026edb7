package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoosis/deflake/internal/mapper"
	"github.com/dkoosis/deflake/pkg/tryjob"
)

func newTryJobsCmd(a *app) *cobra.Command {
	var idsOnly bool
	cmd := &cobra.Command{
		Use:   "tryjobs [listing]",
		Short: "List the build ids found in a try-job listing",
		Long: `Read a try-job listing (the text report or a JSON list of build records)
from a file or stdin and list its builds. With --ids only the deduplicated,
numerically sorted build ids are printed, one per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := a.readInput(path)
			if err != nil {
				return err
			}
			res, err := tryjob.Parse(data)
			if err != nil {
				return err
			}
			if idsOnly {
				ids := res.IDs()
				if len(ids) == 0 {
					return nil
				}
				_, err := fmt.Fprintln(a.stdout, strings.Join(ids, "\n"))
				return err
			}
			return a.emit(mapper.FromTryJobs(res))
		},
	}
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print only build ids")
	return cmd
}

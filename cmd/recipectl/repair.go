package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repairPathsCmd = &cobra.Command{
	Use:   "repair-paths",
	Short: "Recompute every category path and level from the parent chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, closeFn, err := openServices()
		if err != nil {
			return err
		}
		defer closeFn()

		fixed, err := svcs.Categories.RepairPaths(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "repaired %d categories\n", fixed)
		return nil
	},
}

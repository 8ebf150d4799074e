package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many job postings and evaluations are stored",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		stats, err := rt.service.Dashboard()
		if err != nil {
			rt.fail("reading stored data", err)
			return
		}

		renderStats(cmd.OutOrStdout(), stats)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

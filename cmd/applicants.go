package cmd

import (
	"github.com/spf13/cobra"
)

var applicantsCmd = &cobra.Command{
	Use:   "applicants",
	Short: "Browse evaluated applicants",
}

var applicantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evaluations, optionally for one job posting",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		jobID, _ := cmd.Flags().GetString("job")
		records, err := rt.service.Applicants(jobID)
		if err != nil {
			rt.fail("listing applicants", err)
			return
		}

		renderApplicantList(cmd.OutOrStdout(), records)
	},
}

var applicantsShowCmd = &cobra.Command{
	Use:   "show <submission-id>",
	Short: "Show the full evaluation of one applicant",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		record, err := rt.service.Applicant(args[0])
		if err != nil {
			rt.fail("getting applicant", err)
			return
		}

		renderEvaluation(cmd.OutOrStdout(), record)
	},
}

func init() {
	rootCmd.AddCommand(applicantsCmd)
	applicantsCmd.AddCommand(applicantsListCmd, applicantsShowCmd)

	applicantsListCmd.Flags().String("job", "", "only show applicants of this job posting")
}

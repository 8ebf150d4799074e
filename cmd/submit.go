package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/screening"
)

var submitCmd = &cobra.Command{
	Use:   "submit [flags] resume.pdf [more.pdf...]",
	Short: "Submit an applicant's resume and score it against a job posting",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, true)
		defer rt.Close()

		jobID, _ := cmd.Flags().GetString("job")
		if jobID == "" {
			jobs, err := rt.service.Jobs()
			if err != nil {
				rt.fail("listing job postings", err)
				return
			}
			job, err := selectJob(jobs)
			if err != nil {
				rt.fail("selecting job posting", err)
				return
			}
			jobID = job.ID
		}

		name, _ := cmd.Flags().GetString("name")

		rt.logger.Info("evaluating resume",
			zap.String("job_id", jobID),
			zap.Strings("files", args),
		)

		record, err := rt.service.Submit(ctx, screening.Submission{
			JobID:         jobID,
			ApplicantName: name,
			Files:         args,
		})
		if err != nil {
			rt.fail("evaluating resume", err)
			return
		}

		renderEvaluation(cmd.OutOrStdout(), record)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("job", "", "job posting id (asks interactively when empty)")
	submitCmd.Flags().StringP("name", "n", "", "applicant name")
	submitCmd.MarkFlagRequired("name")
}

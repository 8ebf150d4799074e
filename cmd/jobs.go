package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/rubric"
	"github.com/spigell/resume-rater/internal/screening"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job postings and their evaluation rubrics",
}

var jobsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an evaluation rubric from a job description",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, true)
		defer rt.Close()

		description, err := readInput(cmd, "description-file")
		if err != nil {
			rt.fail("reading job description", err)
			return
		}

		rt.logger.Info("generating rubric", zap.Int("description_length", len(description)))

		draft, err := rt.service.GenerateRubric(ctx, description)
		if err != nil {
			rt.fail("generating rubric", err)
			return
		}

		renderDraft(cmd.OutOrStdout(), draft)

		save, _ := cmd.Flags().GetBool("save")
		if !save {
			return
		}

		title, _ := cmd.Flags().GetString("title")
		if strings.TrimSpace(title) == "" {
			rt.fail("saving job posting", rubric.Invalid("--title is required with --save"))
			return
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			if err := confirm("Save this job posting?"); err != nil {
				rt.fail("saving job posting", err)
				return
			}
		}

		job, err := rt.service.CreateJob(ctx, screening.JobInput{
			Title:        title,
			Description:  description,
			CriteriaText: draft.CriteriaText,
			Prompt:       draft.Prompt,
		})
		if err != nil {
			rt.fail("saving job posting", err)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved job posting %s\n", job.ID)
	},
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job posting from a description and a hand-written rubric",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		in, err := jobInputFromFlags(cmd, screening.JobInput{})
		if err != nil {
			rt.fail("reading job posting input", err)
			return
		}

		job, err := rt.service.CreateJob(ctx, in)
		if err != nil {
			rt.fail("creating job posting", err)
			return
		}

		renderJob(cmd.OutOrStdout(), job)
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		jobs, err := rt.service.Jobs()
		if err != nil {
			rt.fail("listing job postings", err)
			return
		}

		renderJobList(cmd.OutOrStdout(), jobs)
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		job, err := rt.service.Job(args[0])
		if err != nil {
			rt.fail("getting job posting", err)
			return
		}

		renderJob(cmd.OutOrStdout(), job)
	},
}

var jobsEditCmd = &cobra.Command{
	Use:   "edit <job-id>",
	Short: "Edit a job posting in place; unset flags keep current values",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		current, err := rt.service.Job(args[0])
		if err != nil {
			rt.fail("getting job posting", err)
			return
		}

		in, err := jobInputFromFlags(cmd, screening.JobInput{
			Title:        current.Title,
			Description:  current.Description,
			CriteriaText: rubric.Format(current.EvaluationCriteria),
			Prompt:       current.Prompt,
		})
		if err != nil {
			rt.fail("reading job posting input", err)
			return
		}

		job, err := rt.service.UpdateJob(ctx, current.ID, in)
		if err != nil {
			rt.fail("updating job posting", err)
			return
		}

		renderJob(cmd.OutOrStdout(), job)
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job posting; its evaluations are kept",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt := newRuntime(ctx, false)
		defer rt.Close()

		job, err := rt.service.Job(args[0])
		if err != nil {
			rt.fail("getting job posting", err)
			return
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			if err := confirm(fmt.Sprintf("Delete job posting %q?", job.Title)); err != nil {
				rt.fail("deleting job posting", err)
				return
			}
		}

		if err := rt.service.DeleteJob(ctx, job.ID); err != nil {
			rt.fail("deleting job posting", err)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted job posting %s\n", job.ID)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsGenerateCmd, jobsCreateCmd, jobsListCmd, jobsShowCmd, jobsEditCmd, jobsDeleteCmd)

	jobsGenerateCmd.Flags().StringP("description-file", "f", "", "file with the job description ('-' reads stdin)")
	jobsGenerateCmd.Flags().StringP("title", "t", "", "job title, required with --save")
	jobsGenerateCmd.Flags().Bool("save", false, "save the generated rubric as a new job posting")
	jobsGenerateCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before saving")
	jobsGenerateCmd.MarkFlagRequired("description-file")

	for _, c := range []*cobra.Command{jobsCreateCmd, jobsEditCmd} {
		c.Flags().StringP("title", "t", "", "job title")
		c.Flags().StringP("description-file", "f", "", "file with the job description ('-' reads stdin)")
		c.Flags().StringP("criteria-file", "c", "", "file with 'name:score' rubric lines totalling 200")
		c.Flags().StringP("prompt-file", "p", "", "file with the evaluator prompt")
	}

	jobsDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

// jobInputFromFlags overrides base with the values of the flags that were set.
func jobInputFromFlags(cmd *cobra.Command, base screening.JobInput) (screening.JobInput, error) {
	in := base

	if cmd.Flags().Changed("title") {
		in.Title, _ = cmd.Flags().GetString("title")
	}

	files := []struct {
		flag   string
		target *string
	}{
		{flag: "description-file", target: &in.Description},
		{flag: "criteria-file", target: &in.CriteriaText},
		{flag: "prompt-file", target: &in.Prompt},
	}
	for _, f := range files {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		value, err := readInput(cmd, f.flag)
		if err != nil {
			return in, err
		}
		*f.target = value
	}

	return in, nil
}

// readInput returns the content of the file named by flag; '-' reads stdin.
func readInput(cmd *cobra.Command, flag string) (string, error) {
	path, _ := cmd.Flags().GetString(flag)
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("--%s is empty", flag)
	}

	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

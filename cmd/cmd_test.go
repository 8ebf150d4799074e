package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/spigell/resume-rater/internal/hiring"
	"github.com/spigell/resume-rater/internal/screening"
)

func newInputCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().StringP("title", "t", "", "")
	c.Flags().StringP("description-file", "f", "", "")
	c.Flags().StringP("criteria-file", "c", "", "")
	c.Flags().StringP("prompt-file", "p", "", "")
	return c
}

func TestJobInputFromFlagsKeepsUnsetValues(t *testing.T) {
	dir := t.TempDir()
	criteria := filepath.Join(dir, "criteria.txt")
	if err := os.WriteFile(criteria, []byte("Go:150\nSQL:50\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := newInputCommand()
	if err := c.Flags().Parse([]string{"--criteria-file", criteria, "-t", "New title"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	in, err := jobInputFromFlags(c, screening.JobInput{
		Title:        "Old title",
		Description:  "Old description",
		CriteriaText: "Skill:200",
		Prompt:       "Old prompt",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.Title != "New title" || in.CriteriaText != "Go:150\nSQL:50\n" {
		t.Fatalf("expected flags to override: %+v", in)
	}
	if in.Description != "Old description" || in.Prompt != "Old prompt" {
		t.Fatalf("expected unset flags to keep values: %+v", in)
	}
}

func TestReadInputFromStdin(t *testing.T) {
	c := newInputCommand()
	c.SetIn(strings.NewReader("Backend engineer"))
	if err := c.Flags().Parse([]string{"-f", "-"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	got, err := readInput(c, "description-file")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Backend engineer" {
		t.Fatalf("unexpected input: %q", got)
	}

	if _, err := readInput(newInputCommand(), "description-file"); err == nil {
		t.Fatal("expected error for empty flag")
	}
}

func TestRenderEvaluation(t *testing.T) {
	var out bytes.Buffer
	renderEvaluation(&out, &hiring.EvaluationRecord{
		SubmissionID:        "sub-1",
		JobTitle:            "Backend engineer",
		ApplicantName:       "Jane Doe",
		TotalScore:          170,
		Scores:              map[string]int{"Skill": 80, "Communication": 90},
		Strengths:           "Go",
		Weaknesses:          "SQL",
		InterviewQuestions:  []string{"Why Go?", "Tell us about a hard bug."},
		ResumeFilePath:      "data/pdf/sub-1_Jane_Doe.pdf",
		SubmissionTimestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	})

	text := out.String()
	for _, want := range []string{"Jane Doe", "170/200", "Communication: 90", " 1. Why Go?", "data/pdf/sub-1_Jane_Doe.pdf"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestRenderDraftWarnsOnWrongTotal(t *testing.T) {
	var out bytes.Buffer
	renderDraft(&out, &screening.Draft{
		Criteria: hiring.Criteria{{Name: "Go", Points: 100}, {Name: "SQL", Points: 90}},
		Prompt:   "Evaluate.",
	})

	if !strings.Contains(out.String(), "totals 190 points") {
		t.Fatalf("expected total warning:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Go:100\nSQL:90") {
		t.Fatalf("expected editable form:\n%s", out.String())
	}
}

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/resume-rater/internal/hiring"
	"github.com/spigell/resume-rater/internal/rubric"
	"github.com/spigell/resume-rater/internal/screening"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func renderCriteria(criteria hiring.Criteria) string {
	width := 0
	for _, item := range criteria {
		width = max(width, lipgloss.Width(item.Name))
	}

	lines := make([]string, 0, len(criteria)+1)
	for _, item := range criteria {
		pad := strings.Repeat(" ", width-lipgloss.Width(item.Name))
		lines = append(lines, fmt.Sprintf("  %s%s  %3d", item.Name, pad, item.Points))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("  total %d/%d", criteria.Total(), hiring.RequiredTotal)))
	return strings.Join(lines, "\n")
}

func renderDraft(w io.Writer, draft *screening.Draft) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Generated rubric") + "\n\n")
	b.WriteString(renderCriteria(draft.Criteria) + "\n\n")
	b.WriteString(field("Evaluator prompt", "") + "\n" + draft.Prompt)

	fmt.Fprintln(w, boxStyle.Render(b.String()))

	if draft.Total() != hiring.RequiredTotal {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("The generated rubric totals %d points; edit it to %d before saving.", draft.Total(), hiring.RequiredTotal)))
	}
	fmt.Fprintln(w, dimStyle.Render("Editable form:"))
	fmt.Fprintln(w, rubric.Format(draft.Criteria))
}

func renderJob(w io.Writer, job *hiring.JobPosting) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(job.Title) + "\n")
	b.WriteString(dimStyle.Render(job.ID) + "\n\n")
	b.WriteString(field("Description", "") + "\n" + job.Description + "\n\n")
	b.WriteString(field("Evaluation criteria", "") + "\n" + renderCriteria(job.EvaluationCriteria) + "\n\n")
	b.WriteString(field("Evaluator prompt", "") + "\n" + job.Prompt)

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

func renderJobList(w io.Writer, jobs []*hiring.JobPosting) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No job postings."))
		return
	}
	for _, job := range jobs {
		fmt.Fprintf(w, "%s  %s  %s\n", job.ID, titleStyle.Render(job.Title), dimStyle.Render(fmt.Sprintf("(%d criteria)", len(job.EvaluationCriteria))))
	}
}

func renderApplicantList(w io.Writer, records []*hiring.EvaluationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No applicants for this job posting."))
		return
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			r.SubmissionID,
			scoreStyle.Render(fmt.Sprintf("%3d", r.TotalScore)),
			r.ApplicantName,
			dimStyle.Render(r.JobTitle),
			dimStyle.Render(r.SubmissionTimestamp.Format(time.DateTime)),
		)
	}
}

func renderEvaluation(w io.Writer, r *hiring.EvaluationRecord) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.ApplicantName) + "  " + dimStyle.Render(r.JobTitle) + "\n")
	b.WriteString(dimStyle.Render(r.SubmissionID+"  "+r.SubmissionTimestamp.Format(time.DateTime)) + "\n\n")
	b.WriteString(field("Total score", scoreStyle.Render(fmt.Sprintf("%d/%d", r.TotalScore, hiring.RequiredTotal))) + "\n")

	for _, name := range r.SortedScoreNames() {
		b.WriteString(fmt.Sprintf("  %s: %d\n", name, r.Scores[name]))
	}

	b.WriteString("\n" + field("Strengths", "") + "\n" + r.Strengths + "\n\n")
	b.WriteString(field("Weaknesses", "") + "\n" + r.Weaknesses + "\n\n")
	b.WriteString(field("Interview questions", "") + "\n")
	for i, q := range r.InterviewQuestions {
		b.WriteString(fmt.Sprintf("  %2d. %s\n", i+1, q))
	}
	b.WriteString("\n" + field("Resume", r.ResumeFilePath))

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

func renderStats(w io.Writer, stats *screening.Stats) {
	fmt.Fprintln(w, boxStyle.Render(
		titleStyle.Render(app)+"\n\n"+
			field("Job postings", fmt.Sprint(stats.Jobs))+"\n"+
			field("Evaluated resumes", fmt.Sprint(stats.Evaluations)),
	))
}

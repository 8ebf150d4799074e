package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/resume-rater/internal/hiring"
)

// EvaluationLog is the append-only record of scored submissions.
type EvaluationLog interface {
	Append(record *hiring.EvaluationRecord) error
	// List returns records in append order. An empty jobID returns every record.
	List(jobID string) ([]*hiring.EvaluationRecord, error)
	Get(submissionID string) (*hiring.EvaluationRecord, error)
	Count() (int, error)
	Close() error
}

// Columns of the flattened evaluation record, in log order.
var Columns = []string{
	"submission_id",
	"job_id",
	"job_title",
	"applicant_name",
	"total_score",
	"scores",
	"strengths",
	"weaknesses",
	"interview_questions",
	"resume_file_path",
	"submission_timestamp",
}

// Older logs name two columns differently.
var legacyColumns = map[string]string{
	"pdf_path":        "resume_file_path",
	"submission_date": "submission_timestamp",
}

// timestampLayouts are accepted when reading; records are written as RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// flatten converts a record into column values ordered as Columns.
func flatten(record *hiring.EvaluationRecord) ([]string, error) {
	scores, err := hiring.EncodeScores(record.Scores)
	if err != nil {
		return nil, err
	}

	return []string{
		record.SubmissionID,
		record.JobID,
		record.JobTitle,
		record.ApplicantName,
		strconv.Itoa(record.TotalScore),
		scores,
		record.Strengths,
		record.Weaknesses,
		hiring.JoinQuestions(record.InterviewQuestions),
		record.ResumeFilePath,
		record.SubmissionTimestamp.Format(time.RFC3339),
	}, nil
}

// unflatten restores a record from column values keyed by column name.
func unflatten(values map[string]string) (*hiring.EvaluationRecord, error) {
	record := &hiring.EvaluationRecord{
		SubmissionID:       values["submission_id"],
		JobID:              values["job_id"],
		JobTitle:           values["job_title"],
		ApplicantName:      values["applicant_name"],
		Strengths:          values["strengths"],
		Weaknesses:         values["weaknesses"],
		InterviewQuestions: hiring.SplitQuestions(values["interview_questions"]),
		ResumeFilePath:     values["resume_file_path"],
	}

	if raw := strings.TrimSpace(values["total_score"]); raw != "" {
		total, err := parseScore(raw)
		if err != nil {
			return nil, fmt.Errorf("submission %s: total_score %q: %w", record.SubmissionID, raw, err)
		}
		record.TotalScore = total
	}

	scores, err := hiring.DecodeScores(values["scores"])
	if err != nil {
		return nil, fmt.Errorf("submission %s: %w", record.SubmissionID, err)
	}
	record.Scores = scores

	if raw := strings.TrimSpace(values["submission_timestamp"]); raw != "" {
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("submission %s: %w", record.SubmissionID, err)
		}
		record.SubmissionTimestamp = ts
	}

	return record, nil
}

// parseScore accepts integers and integral floats such as "170.0".
func parseScore(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized submission_timestamp %q", raw)
}

package hiring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	// InterviewQuestionCount is the number of questions every evaluation carries.
	InterviewQuestionCount = 10
	// QuestionSeparator joins interview questions in the flattened log form.
	QuestionSeparator = "; "
)

// JobPosting is a registered job opening and the rubric its resumes are scored with.
type JobPosting struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	EvaluationCriteria Criteria `json:"evaluation_criteria"`
	Prompt             string   `json:"prompt"`
}

// EvaluationRecord is one scored resume submission.
type EvaluationRecord struct {
	SubmissionID        string         `json:"submission_id"`
	JobID               string         `json:"job_id"`
	JobTitle            string         `json:"job_title"`
	ApplicantName       string         `json:"applicant_name"`
	TotalScore          int            `json:"total_score"`
	Scores              map[string]int `json:"scores"`
	Strengths           string         `json:"strengths"`
	Weaknesses          string         `json:"weaknesses"`
	InterviewQuestions  []string       `json:"interview_questions"`
	ResumeFilePath      string         `json:"resume_file_path"`
	SubmissionTimestamp time.Time      `json:"submission_timestamp"`
}

// EncodeScores flattens a scores map to its JSON text form.
func EncodeScores(scores map[string]int) (string, error) {
	if scores == nil {
		scores = map[string]int{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(scores); err != nil {
		return "", fmt.Errorf("encode scores: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// DecodeScores parses the flattened JSON form back into a map.
func DecodeScores(raw string) (map[string]int, error) {
	scores := map[string]int{}
	if strings.TrimSpace(raw) == "" {
		return scores, nil
	}
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("decode scores %q: %w", raw, err)
	}
	return scores, nil
}

// JoinQuestions flattens interview questions for the tabular log.
func JoinQuestions(questions []string) string {
	return strings.Join(questions, QuestionSeparator)
}

// SplitQuestions restores interview questions from their flattened form.
func SplitQuestions(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, QuestionSeparator)
}

// SortedScoreNames returns score keys in a stable order for display.
func (r *EvaluationRecord) SortedScoreNames() []string {
	return slices.Sorted(maps.Keys(r.Scores))
}

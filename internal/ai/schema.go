package ai

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/resume-rater/internal/hiring"
)

// Schema is a typed LLM response that can check itself after decoding.
type Schema interface {
	Validate() error
}

// RubricResponse is the expected answer to the rubric generation prompt.
type RubricResponse struct {
	EvaluationCriteria map[string]int `json:"evaluation_criteria"`
	Prompt             string         `json:"prompt"`
}

func (r *RubricResponse) Validate() error {
	if len(r.EvaluationCriteria) == 0 {
		return fmt.Errorf("evaluation_criteria is empty")
	}
	for name := range r.EvaluationCriteria {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("evaluation_criteria contains an unnamed item")
		}
		if strings.ContainsAny(name, ":\r\n") {
			return fmt.Errorf("evaluation_criteria item %q must be a single line without ':'", name)
		}
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is empty")
	}
	return nil
}

// Criteria returns the generated rubric ordered as it appeared in raw.
func (r *RubricResponse) Criteria(raw string) hiring.Criteria {
	return hiring.CriteriaFromMap(r.EvaluationCriteria, raw)
}

// EvaluationResponse is the expected answer to the resume evaluation prompt.
type EvaluationResponse struct {
	Scores             map[string]int `json:"scores"`
	TotalScore         int            `json:"total_score"`
	Strengths          string         `json:"strengths"`
	Weaknesses         string         `json:"weaknesses"`
	InterviewQuestions []string       `json:"interview_questions"`

	expected hiring.Criteria
}

// NewEvaluationResponse returns a response that is validated against the rubric
// it was requested for.
func NewEvaluationResponse(criteria hiring.Criteria) *EvaluationResponse {
	return &EvaluationResponse{expected: criteria}
}

func (r *EvaluationResponse) Validate() error {
	if len(r.Scores) == 0 {
		return fmt.Errorf("scores are empty")
	}
	if len(r.InterviewQuestions) != hiring.InterviewQuestionCount {
		return fmt.Errorf("expected %d interview questions, got %d", hiring.InterviewQuestionCount, len(r.InterviewQuestions))
	}
	for i, q := range r.InterviewQuestions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("interview question %d is empty", i+1)
		}
		// Questions are joined with the separator in the evaluation log.
		if strings.Contains(q, hiring.QuestionSeparator) {
			return fmt.Errorf("interview question %d contains %q", i+1, hiring.QuestionSeparator)
		}
	}
	if strings.TrimSpace(r.Strengths) == "" {
		return fmt.Errorf("strengths are empty")
	}
	if strings.TrimSpace(r.Weaknesses) == "" {
		return fmt.Errorf("weaknesses are empty")
	}

	sum := 0
	for name, score := range r.Scores {
		if score < 0 {
			return fmt.Errorf("score for %q is negative", name)
		}
		sum += score
	}
	if sum != r.TotalScore {
		return fmt.Errorf("total_score %d does not match the sum of scores %d", r.TotalScore, sum)
	}

	if r.expected != nil {
		return r.checkAgainst(r.expected)
	}
	return nil
}

func (r *EvaluationResponse) checkAgainst(criteria hiring.Criteria) error {
	var missing, unexpected []string
	for _, item := range criteria {
		score, ok := r.Scores[item.Name]
		if !ok {
			missing = append(missing, item.Name)
			continue
		}
		if score > item.Points {
			return fmt.Errorf("score %d for %q exceeds its %d points", score, item.Name, item.Points)
		}
	}
	for name := range r.Scores {
		if _, ok := criteria.Lookup(name); !ok {
			unexpected = append(unexpected, name)
		}
	}

	if len(missing) > 0 || len(unexpected) > 0 {
		slices.Sort(unexpected)
		return fmt.Errorf("scores do not match evaluation criteria (missing: %v, unexpected: %v)", missing, unexpected)
	}
	return nil
}

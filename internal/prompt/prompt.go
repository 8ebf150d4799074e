// Package prompt renders the two fixed prompt templates sent to the LLM.
package prompt

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/spigell/resume-rater/internal/hiring"
)

//go:embed rubric.md
var rubricTemplate string

//go:embed evaluation.md
var evaluationTemplate string

const (
	placeholderDescription = "{{JOB_DESCRIPTION}}"
	placeholderEvaluator   = "{{EVALUATOR_PROMPT}}"
	placeholderCriteria    = "{{CRITERIA_JSON}}"
	placeholderResume      = "{{RESUME_TEXT}}"
)

// BuildRubric embeds the job description verbatim into the rubric generation template.
func BuildRubric(jobDescription string) string {
	template := rubricTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job posting:\n" + placeholderDescription + "\n\nJSON Response:"
	}

	return strings.NewReplacer(placeholderDescription, jobDescription).Replace(template)
}

// BuildEvaluation embeds the evaluator prompt, the rubric rendered as indented
// JSON and the raw resume text into the evaluation template.
func BuildEvaluation(evaluatorPrompt string, criteria hiring.Criteria, resumeText string) string {
	template := evaluationTemplate
	if strings.TrimSpace(template) == "" {
		template = placeholderEvaluator + "\n\nCriteria:\n" + placeholderCriteria + "\n\nResume:\n" + placeholderResume + "\n\nJSON Response:"
	}

	return strings.NewReplacer(
		placeholderEvaluator, evaluatorPrompt,
		placeholderCriteria, criteriaJSON(criteria),
		placeholderResume, resumeText,
	).Replace(template)
}

func criteriaJSON(criteria hiring.Criteria) string {
	if criteria == nil {
		criteria = hiring.Criteria{}
	}

	raw, err := criteria.MarshalJSON()
	if err != nil {
		return "{}"
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return string(raw)
	}
	return out.String()
}

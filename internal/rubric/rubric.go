// Package rubric parses and formats the line-oriented "name:score" rubric form
// recruiters edit by hand.
package rubric

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/resume-rater/internal/hiring"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("validation failed")

// ValidationError reports a rejected rubric or form input.
type ValidationError struct {
	// Line is the offending rubric line, when the error is about one line.
	Line string
	// Total is the computed sum when the rubric does not add up.
	Total   int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Invalid builds a ValidationError for a generic form problem.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Parse converts newline separated "name:score" lines into criteria. Every line
// must split into exactly two colon separated parts with an integer score, and
// the scores must sum to hiring.RequiredTotal.
func Parse(text string) (hiring.Criteria, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	criteria := make(hiring.Criteria, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	total := 0

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")

		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			return nil, malformed(line)
		}

		name := strings.TrimSpace(parts[0])
		score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, malformed(line)
		}

		if _, dup := seen[name]; dup {
			return nil, &ValidationError{
				Line:    line,
				Message: fmt.Sprintf("duplicate rubric item %q in line %q", name, line),
			}
		}
		seen[name] = struct{}{}

		criteria = append(criteria, hiring.Criterion{Name: name, Points: score})
		total += score
	}

	if total != hiring.RequiredTotal {
		return nil, &ValidationError{
			Total:   total,
			Message: fmt.Sprintf("rubric scores must total %d points, got %d", hiring.RequiredTotal, total),
		}
	}

	return criteria, nil
}

// Format renders criteria in the editable "name:score" form accepted by Parse.
func Format(criteria hiring.Criteria) string {
	lines := make([]string, 0, len(criteria))
	for _, item := range criteria {
		lines = append(lines, fmt.Sprintf("%s:%d", item.Name, item.Points))
	}
	return strings.Join(lines, "\n")
}

func malformed(line string) error {
	return &ValidationError{
		Line:    line,
		Message: fmt.Sprintf("malformed rubric line: %q", line),
	}
}

package rubric

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/spigell/resume-rater/internal/hiring"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		want     hiring.Criteria
		wantLine string
		wantSum  int
	}{
		{
			name:  "valid rubric",
			input: "Skill:100\nCommunication:100",
			want:  hiring.Criteria{{Name: "Skill", Points: 100}, {Name: "Communication", Points: 100}},
		},
		{
			name:  "trims whitespace and carriage returns",
			input: "\n  기술 스택 : 120 \r\n문제 해결:80\n\n",
			want:  hiring.Criteria{{Name: "기술 스택", Points: 120}, {Name: "문제 해결", Points: 80}},
		},
		{
			name:     "missing colon",
			input:    "Skill:100\nCommunication 100",
			wantLine: "Communication 100",
		},
		{
			name:     "too many colons",
			input:    "Skill:100\nTime: 10:30:100",
			wantLine: "Time: 10:30:100",
		},
		{
			name:     "non integer score",
			input:    "Skill:100.5\nCommunication:99.5",
			wantLine: "Skill:100.5",
		},
		{
			name:     "blank line in the middle",
			input:    "Skill:100\n\nCommunication:100",
			wantLine: "",
		},
		{
			name:     "duplicate item",
			input:    "Skill:100\nSkill:100",
			wantLine: "Skill:100",
		},
		{
			name:    "sum below total",
			input:   "Skill:100\nCommunication:90",
			wantSum: 190,
		},
		{
			name:    "empty input",
			input:   "",
			wantSum: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input)
			if tt.want != nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !got.Equal(tt.want) {
					t.Fatalf("expected %+v, got %+v", tt.want, got)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error, got %+v", got)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected validation error, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}

			switch {
			case tt.wantSum > 0:
				if verr.Total != tt.wantSum {
					t.Fatalf("expected sum %d, got %d", tt.wantSum, verr.Total)
				}
				if !strings.Contains(verr.Error(), strconv.Itoa(tt.wantSum)) {
					t.Fatalf("expected message to name the sum: %s", verr.Error())
				}
			case tt.wantSum == 0:
				if verr.Line != tt.wantLine {
					t.Fatalf("expected offending line %q, got %q", tt.wantLine, verr.Line)
				}
				if !strings.Contains(verr.Error(), strconv.Quote(tt.wantLine)) {
					t.Fatalf("expected message to name the line: %s", verr.Error())
				}
			}
		})
	}
}

func TestParseNeverAcceptsWrongTotal(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(6)
		lines := make([]string, 0, n)
		for j := 0; j < n; j++ {
			lines = append(lines, "item"+strconv.Itoa(j)+":"+strconv.Itoa(rng.Intn(120)))
		}

		criteria, err := Parse(strings.Join(lines, "\n"))
		if err != nil {
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("unexpected error type: %v", err)
			}
			continue
		}
		if criteria.Total() != hiring.RequiredTotal {
			t.Fatalf("accepted rubric summing to %d", criteria.Total())
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	t.Parallel()

	criteria := hiring.Criteria{
		{Name: "Go", Points: 90},
		{Name: "Distributed systems", Points: 60},
		{Name: "Communication", Points: 50},
	}

	text := Format(criteria)
	if text != "Go:90\nDistributed systems:60\nCommunication:50" {
		t.Fatalf("unexpected format: %q", text)
	}

	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(criteria) {
		t.Fatalf("round trip changed criteria: %+v", parsed)
	}
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	err := Invalid("title is required")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if err.Error() != "title is required" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

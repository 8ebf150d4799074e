package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/hiring"
)

type stubProvider struct {
	responses []string
	err       error
	prompts   []string
}

func (s *stubProvider) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("unexpected call")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func newTestClient(p Provider) *Client {
	return NewClient(p, zap.NewNop(), 0)
}

func tenQuestions() string {
	qs := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		qs = append(qs, fmt.Sprintf("%q", fmt.Sprintf("Question %d?", i)))
	}
	return "[" + strings.Join(qs, ",") + "]"
}

func TestCallParsesFencedJSON(t *testing.T) {
	stub := &stubProvider{responses: []string{"```json\n{\"fit\": true, \"score\": 0.8}\n```"}}
	client := newTestClient(stub)

	obj, err := client.Call(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["fit"] != true || obj["score"] != 0.8 {
		t.Fatalf("unexpected object: %v", obj)
	}
	if len(stub.prompts) != 1 || stub.prompts[0] != "prompt" {
		t.Fatalf("expected prompt to be sent once, got %v", stub.prompts)
	}
}

func TestCallEmptyCleanedTextIsEmptyResponse(t *testing.T) {
	for _, raw := range []string{"", "   ", "```json\n```", "```\n\n```"} {
		client := newTestClient(&stubProvider{responses: []string{raw}})

		_, err := client.Call(context.Background(), "prompt")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("expected empty response error for %q, got %v", raw, err)
		}
		if errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("empty text must not be parsed")
		}
	}
}

func TestCallMalformedJSONKeepsRawText(t *testing.T) {
	raw := "Sure! Here is the evaluation: {scores: nope"
	client := newTestClient(&stubProvider{responses: []string{raw}})

	_, err := client.Call(context.Background(), "prompt")
	if !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("expected malformed json, got %v", err)
	}

	var llmErr *Error
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if llmErr.Raw != raw {
		t.Fatalf("expected raw text to be kept, got %q", llmErr.Raw)
	}
	if llmErr.Kind != KindMalformedJSON || llmErr.Provider != "stub" {
		t.Fatalf("unexpected error fields: %+v", llmErr)
	}
}

func TestCallRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"null", "[1, 2]", "42"} {
		client := newTestClient(&stubProvider{responses: []string{raw}})
		if _, err := client.Call(context.Background(), "prompt"); !errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("expected malformed json for %q, got %v", raw, err)
		}
	}
}

func TestCallPassesProviderErrorsThrough(t *testing.T) {
	blocked := NewError(KindBlocked, "stub", "SAFETY", nil)
	client := newTestClient(&stubProvider{err: blocked})

	_, err := client.Call(context.Background(), "prompt")
	if !errors.Is(err, ErrBlockedBySafetyFilter) {
		t.Fatalf("expected blocked error, got %v", err)
	}
}

func TestCallDoesNotCache(t *testing.T) {
	stub := &stubProvider{responses: []string{`{"n": 1}`, `{"n": 2}`}}
	client := newTestClient(stub)

	first, err := client.Call(context.Background(), "same prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := client.Call(context.Background(), "same prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.prompts) != 2 {
		t.Fatalf("expected two provider calls, got %d", len(stub.prompts))
	}
	if first["n"] == second["n"] {
		t.Fatalf("expected distinct responses, got %v and %v", first, second)
	}
}

func TestDecodeRubricResponse(t *testing.T) {
	raw := "```json\n{\"evaluation_criteria\": {\"Go\": 120, \"Communication\": \"80\"}, \"prompt\": \"Evaluate strictly\"}\n```"
	client := newTestClient(&stubProvider{responses: []string{raw}})

	var resp RubricResponse
	cleaned, err := client.Decode(context.Background(), "prompt", &resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	criteria := resp.Criteria(cleaned)
	want := hiring.Criteria{{Name: "Go", Points: 120}, {Name: "Communication", Points: 80}}
	if !criteria.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, criteria)
	}
	if resp.Prompt != "Evaluate strictly" {
		t.Fatalf("unexpected prompt: %q", resp.Prompt)
	}
}

func TestDecodeRubricResponseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing prompt", body: `{"evaluation_criteria": {"Go": 200}}`},
		{name: "colon in item name", body: `{"evaluation_criteria": {"Go: backend": 200}, "prompt": "p"}`},
		{name: "newline in item name", body: `{"evaluation_criteria": {"Go\nKubernetes": 120, "Communication": 80}, "prompt": "p"}`},
		{name: "carriage return in item name", body: `{"evaluation_criteria": {"Go\r": 200}, "prompt": "p"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(&stubProvider{responses: []string{tt.body}})

			var resp RubricResponse
			_, err := client.Decode(context.Background(), "prompt", &resp)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected malformed response, got %v", err)
			}
		})
	}
}

func TestDecodeEvaluationResponse(t *testing.T) {
	criteria := hiring.Criteria{{Name: "Skill", Points: 100}, {Name: "Communication", Points: 100}}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid",
			body: `{"scores":{"Skill":80,"Communication":90},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
		},
		{
			name:    "total mismatch",
			body:    `{"scores":{"Skill":80,"Communication":90},"total_score":160,"strengths":"Go","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
		{
			name:    "unknown criterion",
			body:    `{"scores":{"Skill":80,"Leadership":90},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
		{
			name:    "score above points",
			body:    `{"scores":{"Skill":120,"Communication":50},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
		{
			name:    "nine questions",
			body:    `{"scores":{"Skill":80,"Communication":90},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":["a","b","c","d","e","f","g","h","i"]}`,
			wantErr: true,
		},
		{
			name:    "fractional score",
			body:    `{"scores":{"Skill":80.5,"Communication":89.5},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
		{
			name:    "blank strengths",
			body:    `{"scores":{"Skill":80,"Communication":90},"total_score":170,"strengths":"  ","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
		{
			name:    "missing weaknesses",
			body:    `{"scores":{"Skill":80,"Communication":90},"total_score":170,"strengths":"Go","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
		{
			name:    "question with log separator",
			body:    `{"scores":{"Skill":80,"Communication":90},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":["Why Go; why now?","b","c","d","e","f","g","h","i","j"]}`,
			wantErr: true,
		},
		{
			name:    "non numeric score",
			body:    `{"scores":{"Skill":"high","Communication":90},"total_score":170,"strengths":"Go","weaknesses":"SQL","interview_questions":` + tenQuestions() + `}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(&stubProvider{responses: []string{tt.body}})

			resp := NewEvaluationResponse(criteria)
			_, err := client.Decode(context.Background(), "prompt", resp)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected malformed response, got %v", err)
				}
				var llmErr *Error
				if errors.As(err, &llmErr) && llmErr.Raw == "" {
					t.Fatalf("expected raw text in error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.TotalScore != 170 || resp.Scores["Skill"] != 80 || len(resp.InterviewQuestions) != 10 {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestParseProvider(t *testing.T) {
	tests := map[string]ProviderKind{
		"":        ProviderGemini,
		"gemini":  ProviderGemini,
		" OPENAI": ProviderOpenAI,
		"OpenAI":  ProviderOpenAI,
	}
	for input, want := range tests {
		got, err := ParseProvider(input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("expected %s for %q, got %s", want, input, got)
		}
	}

	if _, err := ParseProvider("claude"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(KindBlocked, "gemini", "PROHIBITED_CONTENT", nil)
	if err.Error() != "gemini: response blocked by safety filter: PROHIBITED_CONTENT" {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	cause := errors.New("dial tcp: timeout")
	transport := NewError(KindTransport, "openai", "", cause)
	if !errors.Is(transport, ErrTransport) || !errors.Is(transport, cause) {
		t.Fatalf("expected transport error to match sentinel and cause")
	}
	if errors.Is(transport, ErrEmptyResponse) {
		t.Fatalf("transport error must not match other kinds")
	}
}

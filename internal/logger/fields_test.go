package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}
	if len(StringFields()) != 0 {
		t.Fatal("expected no fields")
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatal("expected fallback logger when nil provided")
	}

	// Logging with the fallback logger must not panic.
	enriched.Info("another log")
}

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name  string
		build func(*zap.Logger) *zap.Logger
		want  map[string]string
	}{
		{
			name:  "common fields",
			build: func(l *zap.Logger) *zap.Logger { return WithCommonFields(l, "gemini", "gemini-2.5-pro") },
			want:  map[string]string{FieldProvider: "gemini", FieldModel: "gemini-2.5-pro"},
		},
		{
			name:  "submission fields",
			build: func(l *zap.Logger) *zap.Logger { return WithSubmissionFields(l, "job-1", "sub-1") },
			want:  map[string]string{FieldJobID: "job-1", FieldSubmissionID: "sub-1"},
		},
		{
			name:  "empty values are skipped",
			build: func(l *zap.Logger) *zap.Logger { return WithSubmissionFields(l, "job-1", " ") },
			want:  map[string]string{FieldJobID: "job-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.InfoLevel)
			tt.build(zap.New(core)).Info("test log")

			entries := observed.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}

			ctx := entries[0].ContextMap()
			if len(ctx) != len(tt.want) {
				t.Fatalf("unexpected fields: %v", ctx)
			}
			for k, v := range tt.want {
				if ctx[k] != v {
					t.Fatalf("expected %s=%q, got %v", k, v, ctx[k])
				}
			}
		})
	}
}

package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldProvider     = "ai_provider"
	FieldModel        = "ai_model"
	FieldJobID        = "job_id"
	FieldSubmissionID = "submission_id"
)

// StringField is a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts fields to zap fields. Keys and values are trimmed and
// entries with an empty key or value are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// WithCommonFields tags logger with the LLM provider and model.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// WithSubmissionFields tags logger with the job posting and submission being processed.
func WithSubmissionFields(logger *zap.Logger, jobID, submissionID string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldJobID, Value: jobID},
		StringField{Key: FieldSubmissionID, Value: submissionID},
	)...)
}

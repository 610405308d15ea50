package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldHunt is the structured log field key for the hunt (adapter) name.
	FieldHunt = "hunt"
	// FieldPlatform is the structured log field key for the source platform.
	FieldPlatform = "platform"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced by a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// HuntFields returns the fields identifying a hunt run.
func HuntFields(hunt, platform string) []zap.Field {
	return StringFields(
		StringField{Key: FieldHunt, Value: hunt},
		StringField{Key: FieldPlatform, Value: platform},
	)
}

// ForHunt attaches the hunt fields to the provided logger.
func ForHunt(logger *zap.Logger, hunt, platform string) *zap.Logger {
	return WithFields(logger, HuntFields(hunt, platform)...)
}

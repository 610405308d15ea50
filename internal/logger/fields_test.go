package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  platform  ", Value: "  upwork  "},
		StringField{Key: FieldHunt, Value: "   "},
		StringField{Key: "   ", Value: "upwork-scanner"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "platform" || fields[0].String != "upwork" {
		t.Fatalf("unexpected platform field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithFields(logger, zap.String("query", "golang")).Info("query sent")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()["query"]; got != "golang" {
		t.Fatalf("expected query field, got %v", got)
	}

	if WithFields(logger) != logger {
		t.Fatalf("expected the same logger without fields")
	}
	WithFields(nil, zap.String("platform", "indeed")).Info("dropped")
}

func TestForHunt(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	ForHunt(zap.New(core), "upwork-scanner", "upwork").Info("scan")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldHunt] != "upwork-scanner" {
		t.Fatalf("expected hunt field, got %q", ctx[FieldHunt])
	}
	if ctx[FieldPlatform] != "upwork" {
		t.Fatalf("expected platform field, got %q", ctx[FieldPlatform])
	}

	if fields := HuntFields("", ""); len(fields) != 0 {
		t.Fatalf("expected empty fields, got %d", len(fields))
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input  string
		limit  int
		expect string
	}{
		"zero limit":       {input: "Senior Go engineer", limit: 0, expect: ""},
		"fits":             {input: "Go", limit: 10, expect: "Go"},
		"cut":              {input: "Senior Go engineer", limit: 9, expect: "Senior Go..."},
		"trimmed then cut": {input: "  Rust  ", limit: 3, expect: "Rus..."},
		"counts runes":     {input: "Développeur", limit: 4, expect: "Déve..."},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("TruncateForLog(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expect)
			}
		})
	}
}

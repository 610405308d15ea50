package filtering

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/gig-hunter/internal/opportunity"
)

func sample() *opportunity.Opportunities {
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &opportunity.Opportunities{Items: []*opportunity.Opportunity{
		{ExternalID: "1", Platform: "upwork", URL: "https://u/1", Title: "Go backend"},
		{ExternalID: "2", Platform: "upwork", URL: "https://u/2", Title: "Unpaid trial task", Description: "quick"},
		{ExternalID: "3", Platform: "indeed", URL: "https://i/3", Title: "Python", ClientInfo: &opportunity.ClientInfo{Name: "Acme"}},
		{ExternalID: "4", Platform: "indeed", URL: "https://i/4", Title: "Old", ExpiresAt: &past},
	}}
}

func TestRunAppliesEnabledSteps(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	deps := Deps{
		Logger: zap.New(core),
		Now:    func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) },
	}

	steps := Default(&Config{
		RedFlags:    []string{"Unpaid"},
		Clients:     []string{"acme"},
		SkipExpired: true,
	})
	if err := Validate(steps); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	got, err := Run(context.Background(), deps, steps, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Len() != 1 || got.Items[0].ExternalID != "1" {
		t.Fatalf("expected only listing 1 to survive, got %d items", got.Len())
	}
	if logs.FilterMessage("filter step").Len() != 4 {
		t.Fatalf("expected 4 filter step entries, got %d", logs.FilterMessage("filter step").Len())
	}
}

func TestExpiredDisabledByDefault(t *testing.T) {
	steps := Default(nil)

	got, err := Run(context.Background(), Deps{}, steps, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 4 {
		t.Fatalf("expected all listings to pass, got %d", got.Len())
	}

	for _, status := range Describe(steps) {
		if status.Name == "expired" && status.Enabled {
			t.Fatalf("expected expired filter to be disabled")
		}
	}
}

func TestExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	list := &opportunity.Opportunities{Items: sample().Items[:1]}
	if err := list.ToExcluded(time.Now()).ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	got, err := Run(context.Background(), Deps{}, []Filter{NewExcludeFile(path)}, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 listings left, got %d", got.Len())
	}
	for _, o := range got.Items {
		if o.URL == "https://u/1" {
			t.Fatalf("expected listing 1 to be excluded")
		}
	}
}

func TestExcludeFileMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	got, err := Run(context.Background(), Deps{}, []Filter{NewExcludeFile(path)}, sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 4 {
		t.Fatalf("expected nothing excluded, got %d left", got.Len())
	}
}

func TestExcludeFileBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Run(context.Background(), Deps{}, []Filter{NewExcludeFile(path)}, sample()); err == nil {
		t.Fatalf("expected error for broken exclude file")
	}
}

func TestContainsRedFlag(t *testing.T) {
	o := &opportunity.Opportunity{Title: "Senior Dev", ClientInfo: &opportunity.ClientInfo{Name: "Crypto Casino"}}

	if !ContainsRedFlag(o, []string{"casino"}) {
		t.Fatalf("expected client name to be checked")
	}
	if ContainsRedFlag(o, nil) {
		t.Fatalf("no flags must never match")
	}
}

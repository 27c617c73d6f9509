package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"grantintel/internal/config"
	"grantintel/pkg/core/bmf"
	"grantintel/pkg/core/tool"
	"grantintel/pkg/models"
)

// fakeSubTool is a minimal tool.Tool that optionally sleeps and/or errors,
// so fan-out truncation and partial-failure behavior can be exercised
// without a real registry-discovered tool.
type fakeSubTool struct {
	id    string
	sleep time.Duration
	err   error
}

func (f *fakeSubTool) Metadata() tool.Metadata {
	return tool.Metadata{ID: f.id, Version: "1.0.0"}
}
func (f *fakeSubTool) Validate([]byte) error { return nil }
func (f *fakeSubTool) Execute(input []byte, tc tool.Context) ([]byte, error) {
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-tc.Ctx.Done():
			return nil, tc.Ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"tool":"` + f.id + `"}`), nil
}

type fakeStore struct {
	results map[models.Fingerprint]models.ToolResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{results: make(map[models.Fingerprint]models.ToolResult)}
}
func (s *fakeStore) GetToolResult(fp models.Fingerprint) (models.ToolResult, bool) {
	r, ok := s.results[fp]
	return r, ok
}
func (s *fakeStore) PutToolResult(r models.ToolResult) error {
	s.results[r.Fingerprint] = r
	return nil
}

func buildRegistry(t *testing.T, tools ...*fakeSubTool) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry()
	for _, ft := range tools {
		if err := r.Register(ft); err != nil {
			t.Fatalf("register %s: %v", ft.id, err)
		}
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("validate registry: %v", err)
	}
	return r
}

func baseTC() tool.Context {
	return tool.Context{Ctx: context.Background(), Store: newFakeStore(), RunID: "run-1"}
}

func essentialsRegistry(t *testing.T) *tool.Registry {
	return buildRegistry(t,
		&fakeSubTool{id: "financial-intelligence"},
		&fakeSubTool{id: "risk-intelligence"},
		&fakeSubTool{id: "network-intelligence"},
		&fakeSubTool{id: "historical-funding-analyzer"},
		&fakeSubTool{id: "schedule-i-analyzer"},
		&fakeSubTool{id: "policy-context"},
		&fakeSubTool{id: "extended-network-pathways"},
		&fakeSubTool{id: "strategic-consulting-generation"},
	)
}

func TestRunEssentialsFansOutToFourToolsWithoutFoundationSponsor(t *testing.T) {
	reg := essentialsRegistry(t)
	cfg := config.IntelligenceConfig{EssentialsDeadline: time.Second, PremiumDeadline: time.Second}
	o := New(reg, bmf.NewIndex(), cfg)

	opp := models.Opportunity{ID: "opp-1"}
	rec, err := o.Run(context.Background(), baseTC(), opp, models.Profile{ID: "profile-1"}, DepthEssentials, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rec.Completed) != 4 {
		t.Fatalf("expected 4 essentials sub-tools (no foundation sponsor), got %d: %v", len(rec.Completed), rec.Completed)
	}
	if rec.Truncated {
		t.Fatalf("did not expect truncation")
	}
}

func TestRunEssentialsIncludesScheduleIForFoundationSponsor(t *testing.T) {
	reg := essentialsRegistry(t)
	idx := bmf.NewIndex()
	_ = idx.Load(strings.NewReader("ein,name,state,ntee_cd,revenue_amt,asset_amt,foundation\n" +
		"1234567,Test Foundation,NY,T30,100,100,03\n"))
	cfg := config.IntelligenceConfig{EssentialsDeadline: time.Second, PremiumDeadline: time.Second}
	o := New(reg, idx, cfg)

	opp := models.Opportunity{ID: "opp-1", SponsorEIN: "1234567"}
	rec, err := o.Run(context.Background(), baseTC(), opp, models.Profile{ID: "profile-1"}, DepthEssentials, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	found := false
	for _, id := range rec.Completed {
		if id == "schedule-i-analyzer" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected schedule-i-analyzer to run for a private-foundation sponsor, got %v", rec.Completed)
	}
}

func TestRunPremiumAddsThreeMoreTools(t *testing.T) {
	reg := essentialsRegistry(t)
	cfg := config.IntelligenceConfig{EssentialsDeadline: time.Second, PremiumDeadline: time.Second}
	o := New(reg, bmf.NewIndex(), cfg)

	opp := models.Opportunity{ID: "opp-1"}
	rec, err := o.Run(context.Background(), baseTC(), opp, models.Profile{ID: "profile-1"}, DepthPremium, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rec.Completed) != 7 {
		t.Fatalf("expected 7 premium sub-tools, got %d: %v", len(rec.Completed), rec.Completed)
	}
}

func TestRunDeadlineExceededMarksTruncated(t *testing.T) {
	reg := buildRegistry(t,
		&fakeSubTool{id: "financial-intelligence"},
		&fakeSubTool{id: "risk-intelligence", sleep: 200 * time.Millisecond},
		&fakeSubTool{id: "network-intelligence", sleep: 200 * time.Millisecond},
		&fakeSubTool{id: "historical-funding-analyzer", sleep: 200 * time.Millisecond},
	)
	cfg := config.IntelligenceConfig{EssentialsDeadline: 20 * time.Millisecond, PremiumDeadline: time.Second}
	o := New(reg, bmf.NewIndex(), cfg)

	opp := models.Opportunity{ID: "opp-1"}
	rec, err := o.Run(context.Background(), baseTC(), opp, models.Profile{ID: "profile-1"}, DepthEssentials, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !rec.Truncated {
		t.Fatalf("expected truncation under a 20ms deadline with 200ms sub-tools")
	}
	if len(rec.Completed) >= 4 {
		t.Fatalf("expected fewer than 4 sub-tools to complete, got %d", len(rec.Completed))
	}
}

func TestRunSubToolFailureIsExcludedButDoesNotAbort(t *testing.T) {
	reg := buildRegistry(t,
		&fakeSubTool{id: "financial-intelligence"},
		&fakeSubTool{id: "risk-intelligence", err: errors.New("boom")},
		&fakeSubTool{id: "network-intelligence"},
		&fakeSubTool{id: "historical-funding-analyzer"},
	)
	cfg := config.IntelligenceConfig{EssentialsDeadline: time.Second, PremiumDeadline: time.Second}
	o := New(reg, bmf.NewIndex(), cfg)

	opp := models.Opportunity{ID: "opp-1"}
	rec, err := o.Run(context.Background(), baseTC(), opp, models.Profile{ID: "profile-1"}, DepthEssentials, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rec.Completed) != 3 {
		t.Fatalf("expected the 3 succeeding sub-tools, got %d: %v", len(rec.Completed), rec.Completed)
	}
	if rec.Truncated {
		t.Fatalf("a real tool error (not a deadline) should not be reported as truncation")
	}
	if _, ok := rec.Results["risk-intelligence"]; ok {
		t.Fatalf("expected failed sub-tool's result to be absent")
	}
}

func TestRunIsIdempotentAcrossIdenticalInputs(t *testing.T) {
	reg := essentialsRegistry(t)
	cfg := config.IntelligenceConfig{EssentialsDeadline: time.Second, PremiumDeadline: time.Second}
	o := New(reg, bmf.NewIndex(), cfg)
	fixedNow := func() time.Time { return time.Unix(1700000000, 0) }

	opp := models.Opportunity{ID: "opp-1"}
	profile := models.Profile{ID: "profile-1"}

	rec1, err := o.Run(context.Background(), baseTC(), opp, profile, DepthEssentials, fixedNow)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	rec2, err := o.Run(context.Background(), baseTC(), opp, profile, DepthEssentials, fixedNow)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	b1, _ := json.Marshal(rec1.Results)
	b2, _ := json.Marshal(rec2.Results)
	if string(b1) != string(b2) {
		t.Fatalf("expected identical results across identical inputs, got %s vs %s", b1, b2)
	}
}

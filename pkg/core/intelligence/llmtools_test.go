package intelligence

import (
	"context"
	"encoding/json"
	"testing"

	"grantintel/pkg/core/llm"
	"grantintel/pkg/core/tool"
	"grantintel/pkg/models"
)

func testSubToolInput() []byte {
	b, _ := json.Marshal(subToolInput{
		Opportunity: models.Opportunity{ID: "opp-1", Channel: models.ChannelFoundation, SponsorEIN: "12-3456789"},
		Profile:     models.Profile{ID: "profile-1", DisplayName: "Test Org", Mission: "Feed people", FocusAreas: []string{"hunger"}},
	})
	return b
}

func TestScheduleIAnalyzerMetadata(t *testing.T) {
	tl := NewScheduleIAnalyzer(llm.NewManager(llm.Config{ActiveProvider: "openai"}), 0.02)
	md := tl.Metadata()
	if md.ID != toolScheduleI {
		t.Fatalf("expected id %s, got %s", toolScheduleI, md.ID)
	}
	if md.Capability != tool.CapabilityBillable {
		t.Fatalf("expected billable capability, got %s", md.Capability)
	}
	if md.CostPerCall != 0.02 {
		t.Fatalf("expected cost 0.02, got %v", md.CostPerCall)
	}
}

func TestScheduleIAnalyzerValidateRejectsMissingSponsor(t *testing.T) {
	tl := NewScheduleIAnalyzer(llm.NewManager(llm.Config{ActiveProvider: "openai"}), 0.02)
	in, _ := json.Marshal(subToolInput{Opportunity: models.Opportunity{ID: "opp-1"}})
	if err := tl.Validate(in); err == nil {
		t.Fatalf("expected validation error for missing sponsor EIN")
	}
}

func TestScheduleIAnalyzerExecuteWrapsProviderFailureAsTransient(t *testing.T) {
	tl := NewScheduleIAnalyzer(llm.NewManager(llm.Config{ActiveProvider: "openai"}), 0.02)
	_, err := tl.Execute(testSubToolInput(), tool.Context{Ctx: context.Background()})
	if err == nil {
		t.Fatalf("expected error from unconfigured openai provider")
	}
	if models.KindOf(err) != models.KindTransient {
		t.Fatalf("expected KindTransient, got %s", models.KindOf(err))
	}
}

func TestStrategicConsultingGenerationMetadata(t *testing.T) {
	tl := NewStrategicConsultingGeneration(llm.NewManager(llm.Config{ActiveProvider: "openai"}), 0.05)
	md := tl.Metadata()
	if md.ID != toolStrategicConsult {
		t.Fatalf("expected id %s, got %s", toolStrategicConsult, md.ID)
	}
	if md.Capability != tool.CapabilityBillable {
		t.Fatalf("expected billable capability, got %s", md.Capability)
	}
}

func TestStrategicConsultingGenerationExecuteWrapsProviderFailureAsTransient(t *testing.T) {
	tl := NewStrategicConsultingGeneration(llm.NewManager(llm.Config{ActiveProvider: "openai"}), 0.05)
	_, err := tl.Execute(testSubToolInput(), tool.Context{Ctx: context.Background()})
	if err == nil {
		t.Fatalf("expected error from unconfigured openai provider")
	}
	if models.KindOf(err) != models.KindTransient {
		t.Fatalf("expected KindTransient, got %s", models.KindOf(err))
	}
}

func TestStrategicConsultingGenerationValidateAcceptsMinimalInput(t *testing.T) {
	tl := NewStrategicConsultingGeneration(llm.NewManager(llm.Config{ActiveProvider: "openai"}), 0.05)
	if err := tl.Validate(testSubToolInput()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

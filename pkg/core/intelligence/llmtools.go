package intelligence

import (
	"encoding/json"
	"fmt"
	"strings"

	"grantintel/pkg/core/llm"
	"grantintel/pkg/core/tool"
	"grantintel/pkg/core/utils"
	"grantintel/pkg/models"
)

// toolVersion is the declared version every C8 billable sub-tool in this
// file registers under. A future revision of either prompt bumps this, the
// same way a manifest-discovered tool would bump Metadata.Version.
const toolVersion = "1.0.0"

// scheduleIAnalyzer is C8's "schedule-i-analyzer" sub-tool: given an
// opportunity's sponsor and the applying profile, it asks the resolved LLM
// provider to assess Form 990 Schedule I (grants paid) alignment. Output is
// free-form JSON — no declared schema, since an LLM's structured-analysis
// shape varies by provider and is consumed as opaque json.RawMessage by
// Orchestrator.Run, not decoded into a fixed Go struct.
type scheduleIAnalyzer struct {
	manager *llm.Manager
	cost    float64
}

// NewScheduleIAnalyzer constructs the registrable schedule-I billable tool.
func NewScheduleIAnalyzer(manager *llm.Manager, costPerCall float64) tool.Tool {
	return &scheduleIAnalyzer{manager: manager, cost: costPerCall}
}

func (t *scheduleIAnalyzer) Metadata() tool.Metadata {
	return tool.Metadata{
		ID:          toolScheduleI,
		Version:     toolVersion,
		Description: "Assesses Form 990 Schedule I grant-making alignment between a private foundation sponsor and an applying profile.",
		Capability:  tool.CapabilityBillable,
		CostPerCall: t.cost,
	}
}

func (t *scheduleIAnalyzer) Validate(input []byte) error {
	var in subToolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return models.NewError(models.KindInvalidArguments, "schedule-i-analyzer: invalid input", err)
	}
	if in.Opportunity.SponsorEIN == "" {
		return models.NewError(models.KindInvalidArguments, "schedule-i-analyzer: opportunity missing sponsor EIN", nil)
	}
	return nil
}

func (t *scheduleIAnalyzer) Execute(input []byte, tc tool.Context) ([]byte, error) {
	var in subToolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, models.NewError(models.KindInvalidArguments, "schedule-i-analyzer: invalid input", err)
	}

	prompt := fmt.Sprintf(
		"Sponsor EIN: %s\nApplying profile: %s, mission: %s, focus areas: %s\nOpportunity amount range: $%.0f-$%.0f\n"+
			"Assess how well this sponsor's historical Schedule I grant-making likely aligns with the profile, and what risk factors a grant-seeker should know about this sponsor's giving pattern.",
		in.Opportunity.SponsorEIN, in.Profile.DisplayName, in.Profile.Mission, strings.Join(in.Profile.FocusAreas, ", "),
		in.Opportunity.AmountMin, in.Opportunity.AmountMax,
	)
	systemPrompt := "You are a grant research analyst. Respond with a single structured analysis JSON object containing " +
		"\"alignment_summary\", \"risk_factors\" (array of strings), and \"confidence\" (0-1 float). No prose outside the JSON object."

	raw, err := t.manager.ExecutePrompt(tc.Ctx, toolScheduleI, prompt, systemPrompt, nil)
	if err != nil {
		return nil, models.NewError(models.KindTransient, "schedule-i-analyzer: provider call failed", err)
	}

	repaired, repairErr := utils.RepairJSON(raw)
	if repairErr != nil {
		repaired = raw
	}
	if !json.Valid([]byte(repaired)) {
		return nil, fmt.Errorf("schedule-i-analyzer: model did not return valid JSON: %s", raw)
	}
	return []byte(repaired), nil
}

// strategicConsultingGeneration is C8's premium-depth "strategic-consulting-
// generation" sub-tool: it asks the resolved LLM provider for a narrative
// recommendation, validated/cleaned as Markdown before being wrapped back
// into the JSON envelope every sub-tool result carries.
type strategicConsultingGeneration struct {
	manager *llm.Manager
	cost    float64
}

// NewStrategicConsultingGeneration constructs the registrable
// strategic-consulting billable tool.
func NewStrategicConsultingGeneration(manager *llm.Manager, costPerCall float64) tool.Tool {
	return &strategicConsultingGeneration{manager: manager, cost: costPerCall}
}

func (t *strategicConsultingGeneration) Metadata() tool.Metadata {
	return tool.Metadata{
		ID:          toolStrategicConsult,
		Version:     toolVersion,
		Description: "Generates a Markdown strategic-consulting narrative recommending how a profile should approach an opportunity.",
		Capability:  tool.CapabilityBillable,
		CostPerCall: t.cost,
	}
}

func (t *strategicConsultingGeneration) Validate(input []byte) error {
	var in subToolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return models.NewError(models.KindInvalidArguments, "strategic-consulting-generation: invalid input", err)
	}
	return nil
}

// consultingOutput is the JSON envelope this sub-tool's result is wrapped
// in, so Orchestrator.Run stores a narrative the same way every other
// sub-tool stores a json.RawMessage result.
type consultingOutput struct {
	Narrative string `json:"narrative"`
}

func (t *strategicConsultingGeneration) Execute(input []byte, tc tool.Context) ([]byte, error) {
	var in subToolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, models.NewError(models.KindInvalidArguments, "strategic-consulting-generation: invalid input", err)
	}

	prompt := fmt.Sprintf(
		"Profile %q (mission: %s, focus areas: %s) is considering a %s-channel opportunity in the $%.0f-$%.0f range. "+
			"Write a concise Markdown strategic recommendation: how strong a fit this is, what to emphasize in the application, and any timing considerations.",
		in.Profile.DisplayName, in.Profile.Mission, strings.Join(in.Profile.FocusAreas, ", "),
		in.Opportunity.Channel, in.Opportunity.AmountMin, in.Opportunity.AmountMax,
	)
	systemPrompt := "You are a grant strategy consultant. Respond in pure Markdown: no conversational filler, no wrapping code fence."

	raw, err := t.manager.ExecutePrompt(tc.Ctx, toolStrategicConsult, prompt, systemPrompt, nil)
	if err != nil {
		return nil, models.NewError(models.KindTransient, "strategic-consulting-generation: provider call failed", err)
	}

	cleaned := utils.CleanMarkdown(raw)
	if !utils.ValidateMarkdown(cleaned) {
		return nil, fmt.Errorf("strategic-consulting-generation: model output failed markdown validation")
	}

	return json.Marshal(consultingOutput{Narrative: cleaned})
}

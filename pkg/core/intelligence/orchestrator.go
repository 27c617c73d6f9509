// Package intelligence implements C8: the deep-intelligence orchestrator
// that fans a single opportunity+profile pair out to the financial, risk,
// network, schedule-I, and historical-funding sub-tools (through C5, so
// every call is fingerprint-cached) and fans the results back in to one
// combined record.
package intelligence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"grantintel/internal/config"
	"grantintel/pkg/core/bmf"
	"grantintel/pkg/core/tool"
	"grantintel/pkg/models"
)

// Depth selects how much of the sub-tool panel runs.
type Depth string

const (
	// DepthEssentials runs the five core sub-tools concurrently.
	DepthEssentials Depth = "essentials"
	// DepthPremium runs essentials plus policy-context, extended network
	// pathways, and strategic-consulting generation.
	DepthPremium Depth = "premium"
)

const (
	toolFinancial         = "financial-intelligence"
	toolRisk              = "risk-intelligence"
	toolNetwork           = "network-intelligence"
	toolScheduleI         = "schedule-i-analyzer"
	toolHistoricalFunding = "historical-funding-analyzer"
	toolPolicyContext     = "policy-context"
	toolExtendedNetwork   = "extended-network-pathways"
	toolStrategicConsult  = "strategic-consulting-generation"
)

// Record is the fan-in result of one orchestration run.
type Record struct {
	OpportunityID string                     `json:"opportunity_id"`
	ProfileID     string                     `json:"profile_id"`
	Depth         Depth                      `json:"depth"`
	Results       map[string]json.RawMessage `json:"results"`
	Completed     []string                   `json:"completed"`
	Truncated     bool                       `json:"truncated"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// subToolInput is the JSON payload every sub-tool receives: the opportunity
// and profile under evaluation, marshaled once and reused across calls so
// repeat orchestration runs over identical inputs fingerprint identically.
type subToolInput struct {
	Opportunity models.Opportunity `json:"opportunity"`
	Profile     models.Profile     `json:"profile"`
}

// Orchestrator runs C8 over a tool registry and BMF index (the latter only
// to decide whether the sponsor is a private foundation, which gates the
// schedule-I sub-tool).
type Orchestrator struct {
	registry *tool.Registry
	bmfIndex *bmf.Index
	cfg      config.IntelligenceConfig
}

// New constructs an Orchestrator.
func New(registry *tool.Registry, bmfIndex *bmf.Index, cfg config.IntelligenceConfig) *Orchestrator {
	return &Orchestrator{registry: registry, bmfIndex: bmfIndex, cfg: cfg}
}

// subTools returns the sub-tool IDs to fan out to for this opportunity and
// depth, per §4.8: schedule-I only if the sponsor is a private foundation;
// premium adds policy-context, extended network pathways, and
// strategic-consulting generation on top of essentials.
func (o *Orchestrator) subTools(opp models.Opportunity, depth Depth) []string {
	ids := []string{toolFinancial, toolRisk, toolNetwork, toolHistoricalFunding}

	if opp.SponsorEIN != "" && o.bmfIndex != nil {
		if org, ok := o.bmfIndex.Lookup(opp.SponsorEIN); ok && org.IsFoundation {
			ids = append(ids, toolScheduleI)
		}
	}

	if depth == DepthPremium {
		ids = append(ids, toolPolicyContext, toolExtendedNetwork, toolStrategicConsult)
	}
	return ids
}

func (o *Orchestrator) deadlineFor(depth Depth) time.Duration {
	if depth == DepthPremium {
		return o.cfg.PremiumDeadline
	}
	return o.cfg.EssentialsDeadline
}

// Run fans out to the applicable sub-tool panel and fans the results back
// in to a single Record. now returns an identical Record across identical
// (opportunity, profile, depth) inputs, modulo GeneratedAt and the
// underlying sub-tools' own timestamp fields, since every sub-tool call
// goes through C5's fingerprint cache.
func (o *Orchestrator) Run(ctx context.Context, tc tool.Context, opp models.Opportunity, profile models.Profile, depth Depth, now func() time.Time) (Record, error) {
	if now == nil {
		now = time.Now
	}

	deadline := now().Add(o.deadlineFor(depth))
	if !tc.Deadline.IsZero() && tc.Deadline.Before(deadline) {
		deadline = tc.Deadline
	}
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	ids := o.subTools(opp, depth)
	payload, err := json.Marshal(subToolInput{Opportunity: opp, Profile: profile})
	if err != nil {
		return Record{}, err
	}

	var (
		mu        sync.Mutex
		results   = make(map[string]json.RawMessage, len(ids))
		completed []string
		truncated bool
	)

	eg, egCtx := errgroup.WithContext(runCtx)
	eg.SetLimit(len(ids))

	for _, id := range ids {
		id := id
		eg.Go(func() error {
			out, callErr := o.invokeOne(egCtx, id, payload, tc)
			if callErr != nil {
				if egCtx.Err() != nil {
					mu.Lock()
					truncated = true
					mu.Unlock()
				} else if tc.Logger != nil {
					tc.Logger("intelligence: sub-tool %s failed: %v", id, callErr)
				}
				return nil
			}

			mu.Lock()
			results[id] = out
			completed = append(completed, id)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	if runCtx.Err() != nil && len(completed) < len(ids) {
		truncated = true
	}

	return Record{
		OpportunityID: opp.ID,
		ProfileID:     profile.ID,
		Depth:         depth,
		Results:       results,
		Completed:     completed,
		Truncated:     truncated,
		GeneratedAt:   now(),
	}, nil
}

// invokeOne runs a single sub-tool call through the registry, preempting on
// ctx cancellation even if the registered Tool implementation does not
// itself observe tc.Ctx.
func (o *Orchestrator) invokeOne(ctx context.Context, id string, payload []byte, tc tool.Context) (json.RawMessage, error) {
	tc.Ctx = ctx
	type outcome struct {
		out []byte
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		out, err := o.registry.Invoke(id, payload, tc, tool.InvokeOptions{})
		ch <- outcome{out, err}
	}()

	select {
	case res := <-ch:
		return res.out, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

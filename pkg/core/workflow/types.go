// Package workflow implements C9: a declarative step graph of tool
// invocations, scheduled by a bounded worker pool in dependency-respecting
// waves, with per-step input templating, retry/backoff, timeout,
// cooperative cancellation, budget-based skipping, and checkpointing.
package workflow

import (
	"fmt"
	"time"

	"grantintel/internal/config"
	"grantintel/pkg/models"
)

// StepDefinition is one node in a workflow's declarative step graph: a tool
// invocation whose input is resolved from prior step outputs and the run's
// initial context via InputTemplate, and whose edges to earlier steps are
// named in DependsOn.
type StepDefinition struct {
	ID            string
	ToolID        string
	ToolVersion   string // "" resolves to the tool's latest registered version
	InputTemplate string // text/template source; rendered output is the tool's JSON input
	DependsOn     []string
	EstimatedCost float64
	Timeout       time.Duration
	BypassCache   bool
	Retry         *config.RetryConfig // nil falls back to the Engine's default policy
}

// WorkflowDefinition is the full step graph for one workflow.
type WorkflowDefinition struct {
	ID    string
	Steps []StepDefinition
}

// validate checks for duplicate step IDs, dangling DependsOn references, and
// dependency cycles before a run starts — the same "discovery then fail
// fast" shape tool.Registry.Validate uses for its dependency graph.
func (d WorkflowDefinition) validate() error {
	byID := make(map[string]StepDefinition, len(d.Steps))
	for _, s := range d.Steps {
		if s.ID == "" {
			return fmt.Errorf("workflow %s: step missing id", d.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return fmt.Errorf("workflow %s: duplicate step id %q", d.ID, s.ID)
		}
		byID[s.ID] = s
	}
	for _, s := range d.Steps {
		for _, dep := range s.DependsOn {
			if _, ok := byID[dep]; !ok {
				return fmt.Errorf("workflow %s: step %s depends on unknown step %q", d.ID, s.ID, dep)
			}
		}
	}

	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var visit func(id string, chain []string) error
	visit = func(id string, chain []string) error {
		if visiting[id] {
			return fmt.Errorf("workflow %s: dependency cycle: %v -> %s", d.ID, chain, id)
		}
		if visited[id] {
			return nil
		}
		visiting[id] = true
		defer func() { visiting[id] = false }()
		for _, dep := range byID[id].DependsOn {
			if err := visit(dep, append(chain, id)); err != nil {
				return err
			}
		}
		visited[id] = true
		return nil
	}
	for _, s := range d.Steps {
		if err := visit(s.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

// Checkpointer is the subset of C10's workflow store a run needs to persist
// (stepId, state, resultRef/errorRef) after every transition. Declared here
// rather than imported from pkg/core/store so pkg/core/workflow stays
// leaf-level in the dependency graph, mirroring tool.ResultStore.
type Checkpointer interface {
	StartRun(run models.WorkflowRun) error
	SaveStep(runID string, rec models.StepRecord) error
	FinishRun(runID string, finishedAt time.Time, cancellationReason string) error
}

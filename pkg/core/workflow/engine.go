package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"

	"grantintel/internal/config"
	"grantintel/pkg/core/tool"
	"grantintel/pkg/models"
)

// isFailureTerminal reports the non-Succeeded terminal states a dependency
// can settle in; any of them cascades its dependents to Skipped rather than
// letting them become Ready.
func isFailureTerminal(s models.StepState) bool {
	switch s {
	case models.StepFailed, models.StepCancelled, models.StepSkipped, models.StepBudgetExceeded:
		return true
	default:
		return false
	}
}

func isTerminal(s models.StepState) bool {
	return s == models.StepSucceeded || isFailureTerminal(s)
}

// Engine runs WorkflowDefinitions: a bounded worker pool scheduling steps in
// dependency-respecting waves (a documented simplification of a fully
// continuous dataflow scheduler — acceptable because workflow step graphs
// are acyclic and each wave still runs its independent steps concurrently
// up to the pool limit), per-step input templating, retry with backoff,
// per-step timeout, cooperative run cancellation, budget-gated dispatch,
// and checkpointing after every step transition.
type Engine struct {
	registry     *tool.Registry
	tracker      budgetReserver
	resultStore  tool.ResultStore
	checkpoint   Checkpointer
	poolSize     int
	defaultRetry config.RetryConfig
	now          func() time.Time
}

// budgetReserver is the subset of budget.Tracker the engine needs, declared
// locally so pkg/core/workflow does not import pkg/core/budget directly —
// the same leaf-package decoupling tool.CostTracker already uses. Its method
// set is identical to tool.CostTracker, so a *budget.Tracker passed in here
// also satisfies tc.Cost for sub-tool invocations.
type budgetReserver interface {
	Reserve(runID string, amount float64) (string, error)
	Commit(token string, actual float64) error
	Refund(token string) error
}

// New constructs an Engine. resultStore may be nil (no read-through
// caching); now defaults to time.Now when nil.
func New(registry *tool.Registry, tracker budgetReserver, resultStore tool.ResultStore, checkpoint Checkpointer, poolSize int, defaultRetry config.RetryConfig, now func() time.Time) *Engine {
	if poolSize <= 0 {
		poolSize = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		registry:     registry,
		tracker:      tracker,
		resultStore:  resultStore,
		checkpoint:   checkpoint,
		poolSize:     poolSize,
		defaultRetry: defaultRetry,
		now:          now,
	}
}

// Run executes one workflow run to completion: every step reaches a
// terminal state, or the run is cancelled via ctx. Steps are identified by
// StepDefinition.ID; profile and initialContext become the run's .Input
// template data.
func (e *Engine) Run(ctx context.Context, def WorkflowDefinition, runID string, profile models.Profile, initialContext map[string]interface{}) (models.WorkflowRun, error) {
	if err := def.validate(); err != nil {
		return models.WorkflowRun{}, err
	}

	byID := make(map[string]StepDefinition, len(def.Steps))
	templates := make(map[string]*template.Template, len(def.Steps))
	for _, s := range def.Steps {
		byID[s.ID] = s
		t, err := parseStepTemplate(s.ID, s.InputTemplate)
		if err != nil {
			return models.WorkflowRun{}, err
		}
		templates[s.ID] = t
	}

	run := models.WorkflowRun{
		ID:                   runID,
		WorkflowDefinitionID: def.ID,
		ProfileID:            profile.ID,
		Inputs:               initialContext,
		Steps:                make(map[string]*models.StepRecord, len(def.Steps)),
		StartedAt:            e.now(),
	}
	for _, s := range def.Steps {
		run.Steps[s.ID] = &models.StepRecord{StepID: s.ID, State: models.StepPending, UpdatedAt: e.now()}
	}
	if err := e.checkpoint.StartRun(run); err != nil {
		return models.WorkflowRun{}, fmt.Errorf("workflow %s: start checkpoint: %w", def.ID, err)
	}

	var mu sync.Mutex
	outputs := make(map[string]interface{}, len(def.Steps))

	saveStep := func(rec models.StepRecord) {
		mu.Lock()
		run.Steps[rec.StepID] = &rec
		mu.Unlock()
		if err := e.checkpoint.SaveStep(runID, rec); err != nil {
			// Checkpointing is best-effort from the engine's perspective: a
			// failure to persist does not change the in-memory run outcome.
			_ = err
		}
	}

	stateOf := func(id string) models.StepState {
		mu.Lock()
		defer mu.Unlock()
		return run.Steps[id].State
	}

	cancellationReason := ""
	for {
		if ctx.Err() != nil {
			cancellationReason = "Cancelled"
			cancelRemaining(def, stateOf, saveStep, e.now)
			break
		}

		ready, skipped := nextWave(def, stateOf)
		for _, id := range skipped {
			saveStep(models.StepRecord{StepID: id, State: models.StepSkipped, Reason: "DependencyNotSucceeded", UpdatedAt: e.now()})
		}
		if len(ready) == 0 {
			if allTerminal(def, stateOf) {
				break
			}
			// No step is ready and the run isn't finished: every remaining
			// step depends, directly or transitively, on one just marked
			// Skipped above, so the next wave pass will pick them up.
			continue
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(e.poolSize)
		for _, id := range ready {
			s := byID[id]
			t := templates[id]
			saveStep(models.StepRecord{StepID: id, State: models.StepReady, UpdatedAt: e.now()})
			eg.Go(func() error {
				mu.Lock()
				data := templateData{Steps: cloneMap(outputs), Input: initialContext}
				mu.Unlock()

				saveStep(models.StepRecord{StepID: id, State: models.StepRunning, UpdatedAt: e.now()})
				rec, out := e.runStep(egCtx, runID, s, t, data)
				saveStep(rec)
				if rec.State == models.StepSucceeded && out != nil {
					mu.Lock()
					outputs[id] = out
					mu.Unlock()
				}
				return nil
			})
		}
		_ = eg.Wait()
	}

	finishedAt := e.now()
	if err := e.checkpoint.FinishRun(runID, finishedAt, cancellationReason); err != nil {
		return run, fmt.Errorf("workflow %s: finish checkpoint: %w", def.ID, err)
	}
	run.FinishedAt = finishedAt
	run.CancellationReason = cancellationReason
	return run, nil
}

// runStep drives one step's own retry/backoff/timeout loop to a terminal
// StepRecord, returning the decoded output (for downstream templating) on
// success.
func (e *Engine) runStep(ctx context.Context, runID string, s StepDefinition, t *template.Template, data templateData) (models.StepRecord, interface{}) {
	cfg := e.defaultRetry
	if s.Retry != nil {
		cfg = *s.Retry
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	lastReason := ""

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return models.StepRecord{StepID: s.ID, State: models.StepCancelled, Reason: "Cancelled", Attempts: attempt, UpdatedAt: e.now()}, nil
		}

		token, err := e.tracker.Reserve(runID, s.EstimatedCost)
		if err != nil {
			return models.StepRecord{StepID: s.ID, State: models.StepBudgetExceeded, Reason: "BudgetExceeded", ErrorRef: err.Error(), Attempts: attempt, UpdatedAt: e.now()}, nil
		}

		input, err := renderStepInput(t, data)
		if err != nil {
			_ = e.tracker.Refund(token)
			return models.StepRecord{StepID: s.ID, State: models.StepFailed, Reason: "MissingInput", ErrorRef: err.Error(), Attempts: attempt, UpdatedAt: e.now()}, nil
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		var deadline time.Time
		if s.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, s.Timeout)
			deadline = e.now().Add(s.Timeout)
		}

		tc := tool.Context{Ctx: attemptCtx, Cost: e.tracker, Store: e.resultStore, RunID: runID, Deadline: deadline}
		out, execErr := e.registry.Invoke(s.ToolID, input, tc, tool.InvokeOptions{Version: s.ToolVersion, BypassCache: s.BypassCache})

		timedOut := s.Timeout > 0 && attemptCtx.Err() == context.DeadlineExceeded
		if cancel != nil {
			cancel()
		}

		if execErr == nil {
			if err := e.tracker.Commit(token, s.EstimatedCost); err != nil {
				_ = err
			}
			var decoded interface{}
			_ = json.Unmarshal(out, &decoded)
			return models.StepRecord{StepID: s.ID, State: models.StepSucceeded, Attempts: attempt, UpdatedAt: e.now()}, decoded
		}

		_ = e.tracker.Refund(token)

		kind := models.KindOf(execErr)
		reason := ""
		if timedOut {
			kind = models.KindTimeout
			reason = "Timeout"
		}
		lastErr = execErr
		lastReason = reason

		if ctx.Err() != nil {
			return models.StepRecord{StepID: s.ID, State: models.StepCancelled, Reason: "Cancelled", Attempts: attempt, UpdatedAt: e.now()}, nil
		}

		if kind.Retryable() && attempt < maxAttempts {
			backoff := calculateBackoff(cfg, attempt-1)
			select {
			case <-ctx.Done():
				return models.StepRecord{StepID: s.ID, State: models.StepCancelled, Reason: "Cancelled", Attempts: attempt, UpdatedAt: e.now()}, nil
			case <-time.After(backoff):
			}
			continue
		}

		return models.StepRecord{StepID: s.ID, State: models.StepFailed, Reason: lastReason, ErrorRef: lastErr.Error(), Attempts: attempt, UpdatedAt: e.now()}, nil
	}

	return models.StepRecord{StepID: s.ID, State: models.StepFailed, Reason: lastReason, ErrorRef: fmt.Sprintf("%v", lastErr), Attempts: maxAttempts, UpdatedAt: e.now()}, nil
}

// nextWave partitions not-yet-terminal steps into those whose dependencies
// have all succeeded (ready to run this wave) and those with at least one
// dependency that settled in a non-success terminal state (cascaded to
// Skipped instead).
func nextWave(def WorkflowDefinition, stateOf func(string) models.StepState) (ready []string, skipped []string) {
	for _, s := range def.Steps {
		if isTerminal(stateOf(s.ID)) {
			continue
		}
		allSucceeded := true
		anyFailedDep := false
		for _, dep := range s.DependsOn {
			ds := stateOf(dep)
			if ds != models.StepSucceeded {
				allSucceeded = false
			}
			if isFailureTerminal(ds) {
				anyFailedDep = true
			}
		}
		switch {
		case anyFailedDep:
			skipped = append(skipped, s.ID)
		case allSucceeded:
			ready = append(ready, s.ID)
		}
	}
	return ready, skipped
}

func allTerminal(def WorkflowDefinition, stateOf func(string) models.StepState) bool {
	for _, s := range def.Steps {
		if !isTerminal(stateOf(s.ID)) {
			return false
		}
	}
	return true
}

// cancelRemaining marks every non-terminal step Cancelled once the run
// context has been tripped — runnable steps do not start, per §4.9.
func cancelRemaining(def WorkflowDefinition, stateOf func(string) models.StepState, saveStep func(models.StepRecord), now func() time.Time) {
	for _, s := range def.Steps {
		if isTerminal(stateOf(s.ID)) {
			continue
		}
		saveStep(models.StepRecord{StepID: s.ID, State: models.StepCancelled, Reason: "Cancelled", UpdatedAt: now()})
	}
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

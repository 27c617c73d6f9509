// Package screening implements C7: the two-pass screening funnel that
// narrows a batch of opportunities down to a ranked, budget-aware
// recommendation list before the expensive C8 deep-intelligence pass ever
// runs.
package screening

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"grantintel/internal/config"
	"grantintel/pkg/core/budget"
	"grantintel/pkg/models"
)

// Mode selects which of the funnel's two passes run.
type Mode string

const (
	// ModeFast runs only the cheap Pass-1 screen.
	ModeFast Mode = "fast"
	// ModeThorough runs only Pass-2, against the batch as given, bypassing
	// Pass-1 filtering — for callers that already pre-filtered the batch.
	ModeThorough Mode = "thorough"
	// ModeBoth runs Pass-1 then Pass-2 against Pass-1's survivors: the full
	// two-pass funnel described in §4.7.
	ModeBoth Mode = "both"
)

// Scorer computes a composite score for one opportunity. Fast-pass and
// thorough-pass scorers share this shape; they differ only in the cost and
// depth of the underlying lookups a caller wires in (fast: profile +
// opportunity summary only; thorough: full tool fan-out via C8).
type Scorer func(ctx context.Context, profile models.Profile, opp models.Opportunity) (models.CompositeScore, error)

// PartialFailure records a single opportunity's failure on a given pass; per
// §4.7 this does not abort the batch.
type PartialFailure struct {
	OpportunityID string
	Pass          string
	Err           error
}

// Result is the funnel's output for one batch.
type Result struct {
	// Survivors is the deterministically ordered recommendation list:
	// descending composite score, ties broken by opportunity ID ascending.
	Survivors []models.CompositeScore
	// Deferred holds opportunity IDs that were never scored: first those
	// left when the budget was exhausted mid-batch, in the order the
	// workers reached them (not necessarily input order; in ModeBoth the
	// second pass's before the first pass's), then any IDs beyond
	// MaxBatchSize, in input order.
	Deferred []string
	// PartialFailures holds opportunities whose scoring call errored.
	PartialFailures []PartialFailure
}

// Funnel is the screening engine for one run. It is not safe to reuse
// across runs with different RunIDs against the same Tracker unless the
// caller wants shared budget accounting.
type Funnel struct {
	cfg      config.ScreeningConfig
	poolSize int
	tracker  *budget.Tracker
	fast     Scorer
	thorough Scorer
}

// New constructs a Funnel. poolSize <= 0 falls back to 1 (sequential).
func New(cfg config.ScreeningConfig, poolSize int, tracker *budget.Tracker, fastScorer, thoroughScorer Scorer) *Funnel {
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Funnel{cfg: cfg, poolSize: poolSize, tracker: tracker, fast: fastScorer, thorough: thoroughScorer}
}

// Screen runs the configured mode's pass(es) over opportunities, under
// bounded concurrency and budget enforcement, and returns a deterministically
// ordered result.
func (f *Funnel) Screen(ctx context.Context, runID string, profile models.Profile, opportunities []models.Opportunity, mode Mode) (Result, error) {
	batch := opportunities
	var deferredOverflow []string
	if f.cfg.MaxBatchSize > 0 && len(batch) > f.cfg.MaxBatchSize {
		for _, o := range batch[f.cfg.MaxBatchSize:] {
			deferredOverflow = append(deferredOverflow, o.ID)
		}
		batch = batch[:f.cfg.MaxBatchSize]
	}

	switch mode {
	case ModeFast:
		res, err := f.runPass(ctx, runID, "fast", f.fast, f.cfg.FastPassCost, profile, batch, f.cfg.FastThreshold)
		if err != nil {
			return Result{}, err
		}
		res.Deferred = append(res.Deferred, deferredOverflow...)
		return finalize(res), nil

	case ModeThorough:
		res, err := f.runPass(ctx, runID, "thorough", f.thorough, f.cfg.ThoroughPassCost, profile, batch, 0)
		if err != nil {
			return Result{}, err
		}
		res.Deferred = append(res.Deferred, deferredOverflow...)
		return finalize(res), nil

	case ModeBoth:
		pass1, err := f.runPass(ctx, runID, "fast", f.fast, f.cfg.FastPassCost, profile, batch, f.cfg.FastThreshold)
		if err != nil {
			return Result{}, err
		}
		survivorOpps := make([]models.Opportunity, 0, len(pass1.Survivors))
		byID := make(map[string]models.Opportunity, len(batch))
		for _, o := range batch {
			byID[o.ID] = o
		}
		for _, cs := range pass1.Survivors {
			if o, ok := byID[cs.OpportunityID]; ok {
				survivorOpps = append(survivorOpps, o)
			}
		}

		pass2, err := f.runPass(ctx, runID, "thorough", f.thorough, f.cfg.ThoroughPassCost, profile, survivorOpps, 0)
		if err != nil {
			return Result{}, err
		}

		out := pass2
		out.Deferred = append(out.Deferred, pass1.Deferred...)
		out.Deferred = append(out.Deferred, deferredOverflow...)
		out.PartialFailures = append(out.PartialFailures, pass1.PartialFailures...)
		return finalize(out), nil

	default:
		return Result{}, fmt.Errorf("screening: unknown mode %q", mode)
	}
}

// runPass executes one scoring pass over items with bounded concurrency,
// budget-gated dispatch, and partial-failure tolerance. threshold == 0 means
// "no threshold": every scored item survives.
func (f *Funnel) runPass(ctx context.Context, runID, passName string, scorer Scorer, cost float64, profile models.Profile, items []models.Opportunity, threshold float64) (Result, error) {
	var (
		mu         sync.Mutex
		survivors  []models.CompositeScore
		deferred   []string
		failures   []PartialFailure
		exhausted  atomic.Bool
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(f.poolSize)

	for _, item := range items {
		item := item
		eg.Go(func() error {
			if exhausted.Load() {
				mu.Lock()
				deferred = append(deferred, item.ID)
				mu.Unlock()
				return nil
			}

			token, err := f.tracker.Reserve(runID, cost)
			if err != nil {
				if models.IsKind(err, models.KindBudgetExceeded) {
					exhausted.Store(true)
					mu.Lock()
					deferred = append(deferred, item.ID)
					mu.Unlock()
					return nil
				}
				return err
			}

			cs, scoreErr := scorer(egCtx, profile, item)
			if scoreErr != nil {
				_ = f.tracker.Refund(token)
				mu.Lock()
				failures = append(failures, PartialFailure{OpportunityID: item.ID, Pass: passName, Err: scoreErr})
				mu.Unlock()
				return nil
			}
			_ = f.tracker.Commit(token, cost)

			if threshold > 0 && cs.Overall < threshold {
				return nil
			}

			mu.Lock()
			survivors = append(survivors, cs)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	return Result{Survivors: survivors, Deferred: deferred, PartialFailures: failures}, nil
}

// finalize applies the deterministic ordering contract: descending
// composite score, ties broken by opportunity ID ascending.
func finalize(r Result) Result {
	sort.Slice(r.Survivors, func(i, j int) bool {
		a, b := r.Survivors[i], r.Survivors[j]
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		return a.OpportunityID < b.OpportunityID
	})
	return r
}

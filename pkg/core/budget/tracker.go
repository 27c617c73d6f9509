// Package budget implements C11: the cost/budget tracker every billable
// tool invocation and workflow step reserves against before executing.
package budget

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"grantintel/pkg/models"
)

// microDollar is the fixed-point unit counters are held in, so per-run,
// per-day, and per-month totals are whole int64s (the per-run total an
// atomic.Int64, the daily and monthly totals guarded by mu) — Go's atomic
// package has no float64 counter, the same constraint the teacher's
// CostGuard (pkg/core/agent/cost_guard.go) sidesteps by counting tokens as
// whole int64s rather than fractional cost.
const microDollar = 1_000_000

// Config carries the three ceilings named in §4.11, sourced from
// internal/config.BudgetConfig.
type Config struct {
	RunCeiling   float64
	DailyCeiling float64
	MonthCeiling float64
}

// Tracker is a thread-safe reserve/commit/refund counter set scoped to one
// process: a run-lifetime counter that never rolls over, plus daily and
// monthly counters that roll over at wall-clock midnight UTC and the first
// of the month UTC respectively.
type Tracker struct {
	cfg Config
	now func() time.Time

	runUsed atomic.Int64 // micro-dollars; lifetime of the Tracker, never rolls over

	mu           sync.Mutex
	dailyUsed    int64
	dailyKey     int64 // days since Unix epoch, UTC
	monthUsed    int64
	monthKey     int64 // year*12 + month, UTC
	reservations map[string]int64
}

// New constructs a Tracker. now defaults to time.Now when nil; tests inject
// a fixed clock to exercise rollover deterministically.
func New(cfg Config, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	t := &Tracker{
		cfg:          cfg,
		now:          now,
		reservations: make(map[string]int64),
	}
	t.dailyKey, t.monthKey = dayKey(now()), monthKey(now())
	return t
}

func dayKey(t time.Time) int64 {
	return t.UTC().Unix() / int64((24 * time.Hour).Seconds())
}

func monthKey(t time.Time) int64 {
	u := t.UTC()
	return int64(u.Year())*12 + int64(u.Month())
}

func toMicros(amount float64) int64 {
	return int64(amount*microDollar + 0.5)
}

func fromMicros(micros int64) float64 {
	return float64(micros) / microDollar
}

// rolloverLocked resets daily/monthly counters when wall-clock UTC has
// crossed into a new day or month. Caller must hold t.mu.
func (t *Tracker) rolloverLocked() {
	dk, mk := dayKey(t.now()), monthKey(t.now())
	if dk != t.dailyKey {
		t.dailyUsed = 0
		t.dailyKey = dk
	}
	if mk != t.monthKey {
		t.monthUsed = 0
		t.monthKey = mk
	}
}

// Reserve attempts to reserve amount against all three ceilings. On success
// it returns an opaque token the caller must later Commit or Refund; on
// denial it returns models.KindBudgetExceeded so callers short-circuit per
// §4.11.
func (t *Tracker) Reserve(runID string, amount float64) (string, error) {
	micros := toMicros(amount)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()

	if t.cfg.RunCeiling > 0 && t.runUsed.Load()+micros > toMicros(t.cfg.RunCeiling) {
		return "", models.NewError(models.KindBudgetExceeded,
			fmt.Sprintf("run %s: reserving %.4f would exceed run ceiling %.4f", runID, amount, t.cfg.RunCeiling), nil)
	}
	if t.cfg.DailyCeiling > 0 && t.dailyUsed+micros > toMicros(t.cfg.DailyCeiling) {
		return "", models.NewError(models.KindBudgetExceeded,
			fmt.Sprintf("run %s: reserving %.4f would exceed daily ceiling %.4f", runID, amount, t.cfg.DailyCeiling), nil)
	}
	if t.cfg.MonthCeiling > 0 && t.monthUsed+micros > toMicros(t.cfg.MonthCeiling) {
		return "", models.NewError(models.KindBudgetExceeded,
			fmt.Sprintf("run %s: reserving %.4f would exceed monthly ceiling %.4f", runID, amount, t.cfg.MonthCeiling), nil)
	}

	t.dailyUsed += micros
	t.monthUsed += micros
	t.runUsed.Add(micros)

	token := uuid.NewString()
	t.reservations[token] = micros
	return token, nil
}

// Commit finalizes a reservation at its actual cost, which may differ from
// the amount originally reserved (e.g. a billable tool whose provider
// charged more or less than estimated). The delta is applied to all three
// counters; Commit does not re-check ceilings, since the cost has already
// been incurred by the time it is known.
func (t *Tracker) Commit(token string, actual float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	reserved, ok := t.reservations[token]
	if !ok {
		return fmt.Errorf("budget: unknown reservation token %q", token)
	}
	delta := toMicros(actual) - reserved

	t.dailyUsed += delta
	t.monthUsed += delta
	t.runUsed.Add(delta)
	delete(t.reservations, token)
	return nil
}

// Refund releases a reservation entirely, for callers whose tool call
// failed before any cost was actually incurred.
func (t *Tracker) Refund(token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	reserved, ok := t.reservations[token]
	if !ok {
		return fmt.Errorf("budget: unknown reservation token %q", token)
	}

	t.dailyUsed -= reserved
	t.monthUsed -= reserved
	t.runUsed.Add(-reserved)
	delete(t.reservations, token)
	return nil
}

// RunUsed reports the run-lifetime committed+reserved total in dollars.
func (t *Tracker) RunUsed() float64 {
	return fromMicros(t.runUsed.Load())
}

// DailyUsed reports the current UTC day's committed+reserved total, after
// applying any pending rollover.
func (t *Tracker) DailyUsed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()
	return fromMicros(t.dailyUsed)
}

// MonthUsed reports the current UTC month's committed+reserved total, after
// applying any pending rollover.
func (t *Tracker) MonthUsed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolloverLocked()
	return fromMicros(t.monthUsed)
}

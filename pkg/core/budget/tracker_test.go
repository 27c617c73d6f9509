package budget

import (
	"testing"
	"time"

	"grantintel/pkg/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestReserveWithinCeilingSucceeds(t *testing.T) {
	tr := New(Config{RunCeiling: 10, DailyCeiling: 10, MonthCeiling: 10}, fixedClock(time.Now()))

	token, err := tr.Reserve("run-1", 2.50)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if tr.RunUsed() != 2.50 {
		t.Fatalf("expected run used 2.50, got %f", tr.RunUsed())
	}
}

func TestReserveDeniedWhenExceedingRunCeiling(t *testing.T) {
	tr := New(Config{RunCeiling: 1.0}, fixedClock(time.Now()))

	if _, err := tr.Reserve("run-1", 0.5); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	_, err := tr.Reserve("run-1", 0.6)
	if err == nil {
		t.Fatalf("expected second reserve to be denied")
	}
	if models.KindOf(err) != models.KindBudgetExceeded {
		t.Fatalf("expected BudgetExceeded, got %v", models.KindOf(err))
	}
}

func TestReserveDeniedWhenExceedingDailyCeiling(t *testing.T) {
	tr := New(Config{RunCeiling: 1000, DailyCeiling: 1.0}, fixedClock(time.Now()))

	if _, err := tr.Reserve("run-1", 0.9); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	_, err := tr.Reserve("run-1", 0.2)
	if models.KindOf(err) != models.KindBudgetExceeded {
		t.Fatalf("expected daily BudgetExceeded, got %v", err)
	}
}

func TestCommitAdjustsForActualCostDelta(t *testing.T) {
	tr := New(Config{RunCeiling: 1000, DailyCeiling: 1000, MonthCeiling: 1000}, fixedClock(time.Now()))

	token, err := tr.Reserve("run-1", 1.0)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := tr.Commit(token, 1.5); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if tr.RunUsed() != 1.5 {
		t.Fatalf("expected run used to reflect actual cost 1.5, got %f", tr.RunUsed())
	}
}

func TestCommitUnknownTokenErrors(t *testing.T) {
	tr := New(Config{}, fixedClock(time.Now()))
	if err := tr.Commit("not-a-real-token", 1.0); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestRefundReleasesReservation(t *testing.T) {
	tr := New(Config{RunCeiling: 1000}, fixedClock(time.Now()))

	token, err := tr.Reserve("run-1", 5.0)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := tr.Refund(token); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if tr.RunUsed() != 0 {
		t.Fatalf("expected run used 0 after refund, got %f", tr.RunUsed())
	}
}

func TestDailyCounterRollsOverAtUTCMidnight(t *testing.T) {
	day1 := time.Date(2026, 7, 30, 23, 59, 0, 0, time.UTC)
	clockBox := struct{ t time.Time }{t: day1}
	tr := New(Config{RunCeiling: 1000, DailyCeiling: 5.0}, func() time.Time { return clockBox.t })

	if _, err := tr.Reserve("run-1", 4.0); err != nil {
		t.Fatalf("reserve before midnight: %v", err)
	}
	if got := tr.DailyUsed(); got != 4.0 {
		t.Fatalf("expected daily used 4.0, got %f", got)
	}

	clockBox.t = time.Date(2026, 7, 31, 0, 1, 0, 0, time.UTC)
	if got := tr.DailyUsed(); got != 0 {
		t.Fatalf("expected daily counter reset after UTC midnight, got %f", got)
	}

	if _, err := tr.Reserve("run-1", 4.0); err != nil {
		t.Fatalf("reserve after rollover should fit fresh daily ceiling: %v", err)
	}
}

func TestMonthCounterRollsOverAtMonthBoundary(t *testing.T) {
	clockBox := struct{ t time.Time }{t: time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)}
	tr := New(Config{RunCeiling: 1000, MonthCeiling: 5.0}, func() time.Time { return clockBox.t })

	if _, err := tr.Reserve("run-1", 4.0); err != nil {
		t.Fatalf("reserve in july: %v", err)
	}

	clockBox.t = time.Date(2026, 8, 1, 0, 30, 0, 0, time.UTC)
	if got := tr.MonthUsed(); got != 0 {
		t.Fatalf("expected month counter reset after month boundary, got %f", got)
	}
}

func TestConcurrentReservesStayWithinCeiling(t *testing.T) {
	tr := New(Config{RunCeiling: 100}, fixedClock(time.Now()))

	const n = 50
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := tr.Reserve("run-1", 2.0)
			results <- err
		}()
	}

	var succeeded int
	for i := 0; i < n; i++ {
		if err := <-results; err == nil {
			succeeded++
		}
	}

	if float64(succeeded)*2.0 > 100 {
		t.Fatalf("reserved total exceeds run ceiling: %d successes at 2.0 each", succeeded)
	}
	if tr.RunUsed() > 100 {
		t.Fatalf("run used %f exceeds ceiling 100", tr.RunUsed())
	}
}

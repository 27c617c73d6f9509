package workflow

import (
	"math"
	"math/rand"
	"time"

	"grantintel/internal/config"
)

// calculateBackoff computes capped exponential backoff for the given
// zero-based attempt index: BaseBackoff * 2^attempt, capped at MaxBackoff.
// When cfg.Jitter is set, the result is scaled by a uniformly distributed
// +/-10% factor so concurrently-retrying steps don't re-dispatch in lockstep.
func calculateBackoff(cfg config.RetryConfig, attempt int) time.Duration {
	backoff := float64(cfg.BaseBackoff) * math.Pow(2, float64(attempt))
	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	if cfg.Jitter {
		factor := 1.0 + (rand.Float64()*2-1)*0.1
		backoff *= factor
	}
	if backoff < 0 {
		backoff = 0
	}
	return time.Duration(backoff)
}

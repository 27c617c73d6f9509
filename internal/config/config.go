// Package config loads the core's run configuration the way the teacher's
// cmd/api/main.go does: godotenv for process environment, then a yaml.v2
// struct for the rest (agent.Config in the teacher became Config here).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

// Config is the run-level configuration read once at startup and treated as
// read-only thereafter (§9: the only process-wide state besides the tool
// registry).
type Config struct {
	ToolsDir   string `yaml:"tools_dir"`
	BMFPath    string `yaml:"bmf_path"`
	DatabaseURL string `yaml:"database_url"`

	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Budget      BudgetConfig      `yaml:"budget"`
	Cache       CacheConfig       `yaml:"cache"`
	ProPublica  ProPublicaConfig  `yaml:"propublica"`
	Retry       RetryConfig       `yaml:"retry"`
	Safeguards  SafeguardConfig   `yaml:"safeguards"`
	Triage      TriageConfig      `yaml:"triage"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Screening    ScreeningConfig    `yaml:"screening"`
	Intelligence IntelligenceConfig `yaml:"intelligence"`

	LLM LLMConfig `yaml:"llm"`
}

// ScoringConfig carries the stage dimension-weight table C6's stage-based
// scoring reads from, keyed by stage name then dimension name; weights
// within a stage must sum to 1.0. The same table applies across all four
// tracks (Nonprofit, Federal, State, Commercial) per §4.6 — tracks vary the
// opportunity being scored, not the weighting scheme.
type ScoringConfig struct {
	Stages map[string]map[string]float64 `yaml:"stages"`
}

// ScreeningConfig tunes C7's two-pass funnel: the minimum composite score a
// fast-pass result needs to survive into the thorough pass, the per-call
// cost estimates charged against C11 before each pass, and a batch size cap.
type ScreeningConfig struct {
	FastThreshold    float64 `yaml:"fast_threshold"`
	MaxBatchSize     int     `yaml:"max_batch_size"`
	FastPassCost     float64 `yaml:"fast_pass_cost"`
	ThoroughPassCost float64 `yaml:"thorough_pass_cost"`
}

// IntelligenceConfig bounds C8's deep-intelligence fan-out deadlines, one
// per depth setting, and prices the two billable sub-tools reserved against
// C11's budget tracker before each call.
type IntelligenceConfig struct {
	EssentialsDeadline time.Duration `yaml:"essentials_deadline"`
	PremiumDeadline    time.Duration `yaml:"premium_deadline"`

	ScheduleICost        float64 `yaml:"schedule_i_cost"`
	StrategicConsultCost float64 `yaml:"strategic_consult_cost"`
}

// ConcurrencyConfig bounds the worker pools described in §5.
type ConcurrencyConfig struct {
	WorkerPoolSize    int `yaml:"worker_pool_size"`
	ScreeningPoolSize int `yaml:"screening_pool_size"`
}

// BudgetConfig holds the cost ceilings enforced by C11.
type BudgetConfig struct {
	RunCeiling   float64 `yaml:"run_ceiling"`
	DailyCeiling float64 `yaml:"daily_ceiling"`
	MonthCeiling float64 `yaml:"month_ceiling"`
}

// CacheConfig bounds C10's tool-result cache.
type CacheConfig struct {
	MaxEntries        int           `yaml:"max_entries"`
	DefaultTTL        time.Duration `yaml:"default_ttl"`
	MinRetentionCount int           `yaml:"min_retention_count"`
}

// ProPublicaConfig tunes the C4 enrichment client.
type ProPublicaConfig struct {
	MinInterRequestDelay time.Duration `yaml:"min_inter_request_delay"`
	HourlyCeiling        int           `yaml:"hourly_ceiling"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
}

// RetryConfig is the default per-step retry policy consumed by C9: capped
// exponential backoff (BaseBackoff doubling up to MaxBackoff) with optional
// +/-10% jitter to avoid thundering-herd re-dispatch after a shared failure.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseBackoff time.Duration `yaml:"base_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
	Jitter      bool          `yaml:"jitter"`
}

// SafeguardConfig resolves Open Question 4: the filing-recency threshold
// defaults to the most conservative value (3 years) unless overridden.
type SafeguardConfig struct {
	FilingRecencyYears int `yaml:"filing_recency_years"`
}

// TriageConfig resolves Open Question 3: triage priority weights, normalized.
type TriageConfig struct {
	ProximityWeight   float64 `yaml:"proximity_weight"`
	DataQualityWeight float64 `yaml:"data_quality_weight"`
	AmountWeight      float64 `yaml:"amount_weight"`
}

// LLMConfig selects the default and per-agent-type external inference
// providers, mirroring the teacher's agent.Config{ActiveProvider, Agents}.
type LLMConfig struct {
	ActiveProvider string                     `yaml:"active_provider"`
	Agents         map[string]AgentLLMOverride `yaml:"agents"`
}

// AgentLLMOverride lets one tool type pin a specific provider.
type AgentLLMOverride struct {
	Provider string `yaml:"provider"`
}

// Default returns the conservative defaults named throughout spec.md §4 and
// the Open Questions in §9.
func Default() Config {
	return Config{
		ToolsDir:    "config/tools",
		BMFPath:     "data/bmf.csv",
		DatabaseURL: "",
		Concurrency: ConcurrencyConfig{
			WorkerPoolSize:    8,
			ScreeningPoolSize: 8,
		},
		Budget: BudgetConfig{
			RunCeiling:   1.0,
			DailyCeiling: 25.0,
			MonthCeiling: 500.0,
		},
		Cache: CacheConfig{
			MaxEntries:        100_000,
			DefaultTTL:        24 * time.Hour,
			MinRetentionCount: 100,
		},
		ProPublica: ProPublicaConfig{
			MinInterRequestDelay: 200 * time.Millisecond,
			HourlyCeiling:        1000,
			CacheTTL:             7 * 24 * time.Hour,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseBackoff: 250 * time.Millisecond,
			MaxBackoff:  10 * time.Second,
			Jitter:      true,
		},
		Safeguards: SafeguardConfig{
			FilingRecencyYears: 3,
		},
		Triage: TriageConfig{
			ProximityWeight:   0.5,
			DataQualityWeight: 0.3,
			AmountWeight:      0.2,
		},
		Screening: ScreeningConfig{
			FastThreshold:    0.5,
			MaxBatchSize:     500,
			FastPassCost:     0.001,
			ThoroughPassCost: 0.01,
		},
		Intelligence: IntelligenceConfig{
			EssentialsDeadline:   30 * time.Second,
			PremiumDeadline:      90 * time.Second,
			ScheduleICost:        0.02,
			StrategicConsultCost: 0.05,
		},
		Scoring: ScoringConfig{
			Stages: map[string]map[string]float64{
				"Discover": {
					"mission": 0.30, "geographic": 0.25, "financial": 0.20,
					"eligibility": 0.15, "timing": 0.10,
				},
				"Plan": {
					"success-probability": 0.30, "capacity": 0.25, "financial-viability": 0.20,
					"network-leverage": 0.15, "compliance": 0.10,
				},
				"Analyze": {
					"competitive": 0.30, "strategic": 0.25, "risk": 0.20,
					"feasibility": 0.15, "roi": 0.10,
				},
				"Examine": {
					"depth-quality": 0.30, "relationships": 0.25, "strategic-fit": 0.20,
					"partnership": 0.15, "innovation": 0.10,
				},
				"Approach": {
					"viability": 0.30, "success": 0.25, "strategic": 0.20,
					"resources": 0.15, "timeline": 0.10,
				},
			},
		},
		LLM: LLMConfig{
			ActiveProvider: "gemini",
			Agents:         map[string]AgentLLMOverride{},
		},
	}
}

// Load reads a .env file (if present) then a YAML config file at path,
// overlaying onto Default(). Missing path is not an error; callers get
// defaults. This mirrors the teacher's cmd/api/main.go startup sequence:
// godotenv.Load() followed by yaml.Unmarshal into the run config.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("[config] Warning: failed to load .env: %v\n", err)
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := os.Getenv("GRANTINTEL_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("GRANTINTEL_RUN_BUDGET"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Budget.RunCeiling = f
		}
	}

	return cfg, nil
}

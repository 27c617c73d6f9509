// Command grantintel wires together the core runtime: configuration, the
// intelligence store, the BMF index, the tool registry, the budget tracker,
// and the workflow engine. It mirrors the teacher's cmd/api/main.go startup
// sequence (env load, config load, manager/handler construction, fatal exit
// on startup error) but stops short of serving traffic — the HTTP
// presentation layer is explicitly out of scope (see DESIGN.md).
package main

import (
	"fmt"
	"os"
	"time"

	"grantintel/internal/config"
	"grantintel/pkg/core/budget"
	"grantintel/pkg/core/intelligence"
	"grantintel/pkg/core/llm"
	"grantintel/pkg/core/store"
	"grantintel/pkg/core/tool"
	"grantintel/pkg/core/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "grantintel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("GRANTINTEL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/grantintel.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Printf("grantintel: loaded config from %s (tools_dir=%s)\n", cfgPath, cfg.ToolsDir)

	st := store.New(store.Options{
		ToolResultMaxEntries:   cfg.Cache.MaxEntries,
		ToolResultMinRetention: cfg.Cache.MinRetentionCount,
		ToolResultDefaultTTL:   cfg.Cache.DefaultTTL,
		Now:                    time.Now,
	})

	if _, err := os.Stat(cfg.BMFPath); err == nil {
		if err := st.BMF.LoadFile(cfg.BMFPath); err != nil {
			return fmt.Errorf("load BMF index %s: %w", cfg.BMFPath, err)
		}
		fmt.Printf("grantintel: loaded BMF index from %s\n", cfg.BMFPath)
	} else {
		fmt.Printf("grantintel: Warning: BMF index %s not found, starting with an empty index\n", cfg.BMFPath)
	}

	registry := tool.NewRegistry()
	manifests, err := tool.DiscoverManifests(cfg.ToolsDir)
	if err != nil {
		fmt.Printf("grantintel: Warning: tool manifest discovery failed: %v\n", err)
	}
	for _, md := range manifests {
		st.RegisterToolTTL(md.ID, md.CacheTTL)
	}
	fmt.Printf("grantintel: discovered %d tool manifest(s) under %s\n", len(manifests), cfg.ToolsDir)

	// C8's billable sub-tools are the only ones with a concrete Go
	// implementation today; every other sub-tool ID the orchestrator fans
	// out to (financial/risk/network/historical-funding/policy-context/
	// extended-network-pathways) resolves through manifests discovered
	// above once a deployment registers their executors the same way.
	llmManager := llm.NewManager(llmConfig(cfg.LLM))
	if err := registry.Register(intelligence.NewScheduleIAnalyzer(llmManager, cfg.Intelligence.ScheduleICost)); err != nil {
		return fmt.Errorf("register schedule-i-analyzer: %w", err)
	}
	if err := registry.Register(intelligence.NewStrategicConsultingGeneration(llmManager, cfg.Intelligence.StrategicConsultCost)); err != nil {
		return fmt.Errorf("register strategic-consulting-generation: %w", err)
	}

	if err := registry.Validate(); err != nil {
		return fmt.Errorf("validate tool registry: %w", err)
	}

	tracker := budget.New(budget.Config{
		RunCeiling:   cfg.Budget.RunCeiling,
		DailyCeiling: cfg.Budget.DailyCeiling,
		MonthCeiling: cfg.Budget.MonthCeiling,
	}, time.Now)

	_ = workflow.New(registry, tracker, st, st.Workflows, cfg.Concurrency.WorkerPoolSize, cfg.Retry, time.Now)
	_ = intelligence.New(registry, st.BMF, cfg.Intelligence)

	fmt.Printf("grantintel: runtime initialized (worker_pool_size=%d, run_ceiling=%.2f)\n",
		cfg.Concurrency.WorkerPoolSize, cfg.Budget.RunCeiling)
	return nil
}

// llmConfig adapts internal/config.LLMConfig to llm.Config, so pkg/core/llm
// does not need to import internal/config directly.
func llmConfig(cfg config.LLMConfig) llm.Config {
	agents := make(map[string]llm.AgentOverride, len(cfg.Agents))
	for k, v := range cfg.Agents {
		agents[k] = llm.AgentOverride{Provider: v.Provider}
	}
	return llm.Config{ActiveProvider: cfg.ActiveProvider, Agents: agents}
}

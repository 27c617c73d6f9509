// Package tool implements the C5 tool framework & registry: a stateless
// Tool contract, directory-based discovery from declarative Hjson metadata
// files, schema-validated invocation, and fingerprint-based idempotent
// caching backed by the intelligence store.
package tool

import (
	"context"
	"time"

	"grantintel/pkg/models"
)

// CapabilityClass is one of the three tiers named in C5: pure tools do no
// I/O, reads-external tools touch the filesystem/HTTP/database, and
// reads-external+billable tools additionally consume paid external
// inference and must be gated by the cost tracker before executing.
type CapabilityClass string

const (
	CapabilityPure           CapabilityClass = "pure"
	CapabilityReadsExternal  CapabilityClass = "reads-external"
	CapabilityBillable       CapabilityClass = "reads-external+billable"
)

// Metadata is a tool's declarative self-description, normally sourced from
// its Hjson metadata file at discovery time.
type Metadata struct {
	ID           string           `json:"id"`
	Version      string           `json:"version"`
	Description  string           `json:"description,omitempty"`
	Capability   CapabilityClass  `json:"capability"`
	InputSchema  string           `json:"input_schema"`  // reference name resolved against the schema set
	OutputSchema string           `json:"output_schema"` // reference name resolved against the schema set
	CostPerCall  float64          `json:"cost_per_call"`
	DependsOn    []string         `json:"depends_on,omitempty"` // tool IDs this tool calls into
	CacheTTL     time.Duration    `json:"cache_ttl,omitempty"`
}

// Context carries everything execute(input, context) needs per C5's
// contract: cost tracker, store handle, cancellation, deadline, logger.
// The concrete types live in their own packages (budget.Tracker,
// store.Store) and are referenced here as interfaces this package owns, so
// pkg/core/tool does not import pkg/core/budget or pkg/core/store directly
// and stays leaf-level in the dependency graph.
type Context struct {
	Ctx     context.Context
	Cost    CostTracker
	Store   ResultStore
	Logger  func(format string, args ...interface{})
	RunID   string
	Deadline time.Time
}

// CostTracker is the subset of C11's contract a tool invocation needs.
type CostTracker interface {
	Reserve(runID string, amount float64) (token string, err error)
	Commit(token string, actual float64) error
	Refund(token string) error
}

// ResultStore is the subset of C10's contract a tool invocation needs for
// idempotent caching.
type ResultStore interface {
	GetToolResult(fingerprint models.Fingerprint) (models.ToolResult, bool)
	PutToolResult(result models.ToolResult) error
}

// Tool is a stateless component: metadata/validate/execute per C5's
// contract. Implementations must not hold per-invocation state between
// calls — any state needed across calls belongs in Context or the store.
type Tool interface {
	Metadata() Metadata
	Validate(input []byte) error
	Execute(input []byte, tc Context) ([]byte, error)
}

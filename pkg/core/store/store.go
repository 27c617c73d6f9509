package store

import (
	"sync"
	"time"

	"grantintel/pkg/core/bmf"
	"grantintel/pkg/models"
)

// Store is C10's aggregate: filing cache, tool-result cache, the BMF index,
// and the triage queue, wired together behind the narrow interface C5's
// tool.Context.Store expects (GetToolResult/PutToolResult) without this
// package importing pkg/core/tool back — the dependency runs one way, tool
// -> its own ResultStore interface, satisfied structurally here.
type Store struct {
	Filings     *FilingCache
	ToolResults *ToolResultCache
	BMF         *bmf.Index
	Triage      *TriageStore
	Workflows   *WorkflowStore

	mu             sync.RWMutex
	cacheTTLByTool map[string]time.Duration
}

// Options configures the aggregate store's bounded caches.
type Options struct {
	ToolResultMaxEntries   int
	ToolResultMinRetention int
	ToolResultDefaultTTL   time.Duration
	Now                    func() time.Time
}

// New constructs a Store with fresh in-memory caches and a fresh BMF index.
// Callers load the BMF CSV into Store.BMF separately (C3's LoadFile), and
// wire tool-specific cache TTLs via RegisterToolTTL once the registry has
// discovered manifests.
func New(opts Options) *Store {
	return &Store{
		Filings:        NewFilingCache(),
		ToolResults:    NewToolResultCache(opts.ToolResultMaxEntries, opts.ToolResultMinRetention, opts.ToolResultDefaultTTL, opts.Now),
		BMF:            bmf.NewIndex(),
		Triage:         NewTriageStore(),
		Workflows:      NewWorkflowStore(),
		cacheTTLByTool: make(map[string]time.Duration),
	}
}

// RegisterToolTTL records the per-tool cache TTL to apply on PutToolResult,
// sourced from a discovered Metadata.CacheTTL at registry startup.
func (s *Store) RegisterToolTTL(toolID string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheTTLByTool[toolID] = ttl
}

// GetToolResult implements the tool.ResultStore contract.
func (s *Store) GetToolResult(fp models.Fingerprint) (models.ToolResult, bool) {
	return s.ToolResults.Get(fp)
}

// PutToolResult implements the tool.ResultStore contract, applying the
// TTL registered for the result's ToolID; a tool with no registered TTL
// gets the cache's default.
func (s *Store) PutToolResult(result models.ToolResult) error {
	s.mu.RLock()
	ttl := s.cacheTTLByTool[result.ToolID]
	s.mu.RUnlock()

	s.ToolResults.Put(result, ttl)
	return nil
}

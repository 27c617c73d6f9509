package store

import (
	"fmt"
	"sort"
	"sync"

	"grantintel/pkg/models"
)

// TriageStore is C10's triage queue: an append-only event log plus a
// mutable status projection keyed by TriageItem ID, so readers see current
// status in O(1) without replaying the log, while the log itself is never
// rewritten or truncated.
type TriageStore struct {
	mu         sync.RWMutex
	log        []models.TriageItem // append-only; each entry is a snapshot at the time of the event
	projection map[string]models.TriageItem
}

// NewTriageStore returns an empty triage store.
func NewTriageStore() *TriageStore {
	return &TriageStore{projection: make(map[string]models.TriageItem)}
}

// Append records a new TriageItem (typically Status == TriageQueued) and
// seeds its projection entry.
func (s *TriageStore) Append(item models.TriageItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projection[item.ID]; exists {
		return fmt.Errorf("triage store: item %s already queued", item.ID)
	}
	s.log = append(s.log, item)
	s.projection[item.ID] = item
	return nil
}

// UpdateStatus appends a new log entry reflecting a status transition and
// updates the mutable projection to match. The prior log entries for this
// item are left untouched — the log is append-only.
func (s *TriageStore) UpdateStatus(id string, status models.TriageStatus, decision, assignee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.projection[id]
	if !exists {
		return fmt.Errorf("triage store: item %s not found", id)
	}

	updated := current
	updated.Status = status
	if decision != "" {
		updated.Decision = decision
	}
	if assignee != "" {
		updated.Assignee = assignee
	}

	s.log = append(s.log, updated)
	s.projection[id] = updated
	return nil
}

// Get returns the current projected state of a TriageItem.
func (s *TriageStore) Get(id string) (models.TriageItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.projection[id]
	return item, ok
}

// ListByStatus returns all items currently projected at the given status,
// ordered by queued-at ascending (oldest first).
func (s *TriageStore) ListByStatus(status models.TriageStatus) []models.TriageItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TriageItem
	for _, item := range s.projection {
		if item.Status == status {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuedAt.Before(out[j].QueuedAt) })
	return out
}

// LogLen reports the number of append-only log entries recorded so far,
// including every status transition — not the number of distinct items.
func (s *TriageStore) LogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

package discovery

import (
	"sync"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// CandidateStore accumulates discovered creators, deduplicating globally by
// creator ID. The first-seen record wins; later duplicates are discarded.
// It is safe for concurrent use; the lock covers only the merge step.
type CandidateStore struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	records []model.CreatorRecord
}

// NewCandidateStore creates an empty store.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{seen: make(map[string]struct{})}
}

// Add inserts a record unless its ID was already seen. Returns true if the
// record was kept.
func (s *CandidateStore) Add(rec model.CreatorRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[rec.ID]; dup {
		return false
	}
	s.seen[rec.ID] = struct{}{}
	s.records = append(s.records, rec)
	return true
}

// AddAll merges a batch under a single lock acquisition.
func (s *CandidateStore) AddAll(recs []model.CreatorRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := 0
	for _, rec := range recs {
		if _, dup := s.seen[rec.ID]; dup {
			continue
		}
		s.seen[rec.ID] = struct{}{}
		s.records = append(s.records, rec)
		kept++
	}
	return kept
}

// Records returns a copy of the accumulated records.
func (s *CandidateStore) Records() []model.CreatorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CreatorRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports the number of unique records.
func (s *CandidateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

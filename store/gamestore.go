package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/minaorangina/removeone/engine"
	"github.com/minaorangina/removeone/tournament"
)

var (
	ErrDuplicateID = errors.New("id already stored")
	ErrMissingID   = errors.New("cannot store something without an id")
)

// Store is the archive the spectator server reads from
type Store interface {
	FindRecord(gameID string) *engine.Record
	FindSummary(tournamentID string) *tournament.Summary
	Summaries() []*tournament.Summary
	AddRecord(r *engine.Record) error
	AddSummary(s *tournament.Summary) error
}

// InMemoryStore maps game IDs to replay records and tournament IDs to summaries
type InMemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*engine.Record
	summaries map[string]*tournament.Summary
	// order keeps summaries in the order they were added
	order []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:   map[string]*engine.Record{},
		summaries: map[string]*tournament.Summary{},
		order:     []string{},
	}
}

func (s *InMemoryStore) FindRecord(gameID string) *engine.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[gameID]
	if !ok {
		return nil
	}
	return record
}

func (s *InMemoryStore) FindSummary(tournamentID string) *tournament.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[tournamentID]
	if !ok {
		return nil
	}
	return summary
}

// Summaries returns every stored tournament, oldest first
func (s *InMemoryStore) Summaries() []*tournament.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*tournament.Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.summaries[id])
	}
	return out
}

// RecordIDs returns the stored game IDs in lexical order
func (s *InMemoryStore) RecordIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *InMemoryStore) AddRecord(r *engine.Record) error {
	if r == nil || r.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; exists {
		return ErrDuplicateID
	}
	s.records[r.ID] = r
	return nil
}

func (s *InMemoryStore) AddSummary(summary *tournament.Summary) error {
	if summary == nil || summary.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.summaries[summary.ID]; exists {
		return ErrDuplicateID
	}
	s.summaries[summary.ID] = summary
	s.order = append(s.order, summary.ID)
	return nil
}

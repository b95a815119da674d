package view

import (
	"sync"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

// Store keeps the last fetched records and upload queue. Each collection is
// replaced wholesale; callers never see a partial update.
type Store struct {
	mu      sync.RWMutex
	records []domain.Record
	queue   []domain.QueueItem
}

func NewStore() *Store {
	return &Store{
		records: []domain.Record{},
		queue:   []domain.QueueItem{},
	}
}

func (s *Store) Records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *Store) ReplaceRecords(records []domain.Record) {
	if records == nil {
		records = []domain.Record{}
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

func (s *Store) Queue() []domain.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue
}

func (s *Store) ReplaceQueue(items []domain.QueueItem) {
	if items == nil {
		items = []domain.QueueItem{}
	}
	s.mu.Lock()
	s.queue = items
	s.mu.Unlock()
}

// Package history keeps a bounded, ordered in-memory record of inbound
// messages with O(1) lookup by message id. History is volatile: the
// process forgets everything on restart.
package history

import (
	"sync"

	"wabridge/pkg/models"
	"wabridge/pkg/telemetry"
)

// DefaultLimit is used by readers that pass no (or an invalid) limit.
const DefaultLimit = 50

// Store is a fixed-capacity FIFO ring of message records plus an id
// index. Eviction and index maintenance happen under one lock so no
// index entry ever outlives its record.
type Store struct {
	mu    sync.RWMutex
	buf   []models.MessageRecord
	head  int   // position of the oldest record in buf
	count int   // number of live records
	first int64 // absolute sequence of the oldest record
	byID  map[string]int64
}

// New returns a store bounded at capacity; values below 1 are clamped to
// 1 so callers always get a usable store.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		buf:  make([]models.MessageRecord, capacity),
		byID: make(map[string]int64),
	}
}

// Capacity returns the fixed capacity C.
func (s *Store) Capacity() int { return len(s.buf) }

// Size returns the current number of records.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Append inserts a record, evicting the oldest one first when at
// capacity. O(1).
func (s *Store) Append(rec models.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == len(s.buf) {
		old := s.buf[s.head]
		if old.ID != "" {
			// Only drop the index entry if it still points at the record
			// being evicted; a later record may have reused the id.
			if seq, ok := s.byID[old.ID]; ok && seq == s.first {
				delete(s.byID, old.ID)
			}
		}
		s.buf[s.head] = models.MessageRecord{}
		s.head = (s.head + 1) % len(s.buf)
		s.count--
		s.first++
		telemetry.MessagesEvicted.Inc()
	}
	seq := s.first + int64(s.count)
	s.buf[(s.head+s.count)%len(s.buf)] = rec
	s.count++
	if rec.ID != "" {
		s.byID[rec.ID] = seq
	}
	telemetry.MessagesStored.Inc()
}

// Recent returns the most recent min(limit, size) records in arrival
// order (oldest of the slice first, newest last). The limit is clamped
// to [1, C]; non-positive values fall back to DefaultLimit.
func (s *Store) Recent(limit int) []models.MessageRecord {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > len(s.buf) {
		limit = len(s.buf)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > s.count {
		limit = s.count
	}
	out := make([]models.MessageRecord, limit)
	start := s.count - limit
	for i := 0; i < limit; i++ {
		out[i] = s.buf[(s.head+start+i)%len(s.buf)]
	}
	return out
}

// Lookup returns the record stored under id, or false when it was never
// stored or has been evicted.
func (s *Store) Lookup(id string) (models.MessageRecord, bool) {
	if id == "" {
		return models.MessageRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.byID[id]
	if !ok {
		return models.MessageRecord{}, false
	}
	pos := int(seq - s.first)
	return s.buf[(s.head+pos)%len(s.buf)], true
}

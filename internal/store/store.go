// Package store provides the snackbar history store.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypePut indicates a record was added or updated.
	ChangeTypePut ChangeType = iota
	// ChangeTypePrune indicates records were pruned.
	ChangeTypePrune
	// ChangeTypeHydrate indicates records were reloaded from disk.
	ChangeTypeHydrate
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type  ChangeType
	Count int
	ID    string
}

// ListOptions specifies criteria for listing records.
type ListOptions struct {
	Since      time.Duration // Only records shown within this window (0=all)
	Level      string        // Exact match on level (empty=any)
	ActiveOnly bool          // Only records still on screen
	Limit      int           // Maximum results (0=unlimited)
}

// Store keeps the latest snapshot of every record, newest last.
type Store struct {
	mu      sync.RWMutex
	records []model.Record
	index   map[string]int

	persistence Persistence
	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store. If persistence is not nil every change is
// appended to it.
func NewStore(persistence Persistence) *Store {
	return &Store{
		index:       make(map[string]int),
		persistence: persistence,
	}
}

// Put adds a record or replaces the stored snapshot with the same ID.
func (s *Store) Put(r model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.putLocked(r.Clone())

	if s.persistence != nil {
		if err := s.persistence.Append(r); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypePut, Count: 1, ID: r.ID})
	return nil
}

func (s *Store) putLocked(r *model.Record) {
	if idx, ok := s.index[r.ID]; ok {
		s.records[idx] = *r
		return
	}
	s.index[r.ID] = len(s.records)
	s.records = append(s.records, *r)
}

// Get returns a copy of the record with the given ID, or nil.
func (s *Store) Get(id string) *model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.records[idx].Clone()
}

// FindByDBusID returns the newest record carrying the given D-Bus ID.
func (s *Store) FindByDBusID(id uint32) *model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].DBusID == id {
			return s.records[i].Clone()
		}
	}
	return nil
}

// List returns matching records, newest first.
func (s *Store) List(opts ListOptions) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterRecords(s.records, opts, time.Now())
}

func filterRecords(records []model.Record, opts ListOptions, now time.Time) []model.Record {
	var cutoff int64
	if opts.Since > 0 {
		cutoff = now.Add(-opts.Since).Unix()
	}

	result := make([]model.Record, 0, len(records))
	for _, r := range records {
		if cutoff > 0 && r.ShownAt < cutoff {
			continue
		}
		if opts.Level != "" && r.Level != opts.Level {
			continue
		}
		if opts.ActiveOnly && r.IsDismissed() {
			continue
		}
		result = append(result, *r.Clone())
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ShownAt == result[j].ShownAt {
			return result[i].ID > result[j].ID
		}
		return result[i].ShownAt > result[j].ShownAt
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Prune drops dismissed records shown before now-olderThan and keeps at most
// keep records (0=unlimited). The backing file is compacted. It returns the
// number of records removed.
func (s *Store) Prune(olderThan time.Duration, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var cutoff int64
	if olderThan > 0 {
		cutoff = time.Now().Add(-olderThan).Unix()
	}

	kept := make([]model.Record, 0, len(s.records))
	for _, r := range s.records {
		if cutoff > 0 && r.IsDismissed() && r.ShownAt < cutoff {
			continue
		}
		kept = append(kept, r)
	}
	if keep > 0 && len(kept) > keep {
		kept = kept[len(kept)-keep:]
	}

	removed := len(s.records) - len(kept)
	s.records = kept
	s.index = make(map[string]int, len(kept))
	for i, r := range kept {
		s.index[r.ID] = i
	}

	if s.persistence != nil {
		if err := s.persistence.Rewrite(kept); err != nil {
			return removed, err
		}
	}

	if removed > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypePrune, Count: removed})
	}
	return removed, nil
}

// Hydrate loads records from persistence. Later snapshots replace earlier
// ones with the same ID.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	records, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	for i := range records {
		s.putLocked(&records[i])
	}
	count := len(s.records)
	s.mu.Unlock()

	s.mu.RLock()
	s.notifyChange(ChangeEvent{Type: ChangeTypeHydrate, Count: count})
	s.mu.RUnlock()
	return nil
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Close closes subscriber channels and the persistence.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

// notifyChange sends without blocking. Caller must hold the lock.
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

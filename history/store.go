package history

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

var (
	// ErrIndexOutOfRange is returned for any lookup outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrStaleIndex marks a reference captured before the last Clear.
	// It wraps ErrIndexOutOfRange so callers only need to test for that.
	ErrStaleIndex = fmt.Errorf("stale reference: %w", ErrIndexOutOfRange)
)

// Ref is an index captured together with the epoch it was issued in.
type Ref struct {
	Index int    `json:"index"`
	Epoch uint64 `json:"epoch"`
}

// Stats summarizes a Store for the sidebar.
type Stats struct {
	Total     int      `json:"total"`
	Languages []string `json:"languages"`
}

// Store keeps the records of one session in insertion order.
//
// A Store has a single owner and is not safe for concurrent use. Records are
// stored and returned by value so callers cannot edit them in place.
type Store struct {
	records []Record
	epoch   uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds r at the end. Its index is the size before the call.
func (s *Store) Append(r Record) int {
	s.records = append(s.records, r)
	return len(s.records) - 1
}

// Get returns the record at index i.
func (s *Store) Get(i int) (Record, error) {
	if i < 0 || i >= len(s.records) {
		return Record{}, fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, i, len(s.records))
	}
	return s.records[i], nil
}

// Len reports the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Clear drops every record and invalidates all outstanding references.
// Clearing an empty store does nothing.
func (s *Store) Clear() {
	if len(s.records) == 0 {
		return
	}
	s.records = nil
	s.epoch++
}

// Epoch counts the clears performed so far.
func (s *Store) Epoch() uint64 {
	return s.epoch
}

// Ref captures index i in the current epoch. The index is not checked here;
// Resolve reports out-of-range indices.
func (s *Store) Ref(i int) Ref {
	return Ref{Index: i, Epoch: s.epoch}
}

// Resolve dereferences ref, failing when it was issued before a Clear.
func (s *Store) Resolve(ref Ref) (Record, error) {
	if ref.Epoch != s.epoch {
		return Record{}, fmt.Errorf("%w: index %d from epoch %d, current epoch %d", ErrStaleIndex, ref.Index, ref.Epoch, s.epoch)
	}
	return s.Get(ref.Index)
}

// DistinctLanguages returns the unique language values, sorted.
func (s *Store) DistinctLanguages() []string {
	seen := make(map[string]struct{}, len(s.records))
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if _, ok := seen[r.Language]; ok {
			continue
		}
		seen[r.Language] = struct{}{}
		out = append(out, r.Language)
	}
	sort.Strings(out)
	return out
}

// Stats returns the total count and the distinct languages.
func (s *Store) Stats() Stats {
	return Stats{Total: len(s.records), Languages: s.DistinctLanguages()}
}

// All yields (index, record) pairs oldest first.
func (s *Store) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		records := s.records
		for i, r := range records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Reverse yields (index, record) pairs newest first. Every call returns an
// independent traversal; the store is read only.
func (s *Store) Reverse() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		records := s.records
		for i := len(records) - 1; i >= 0; i-- {
			if !yield(i, records[i]) {
				return
			}
		}
	}
}

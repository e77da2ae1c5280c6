package memory

import (
	"strconv"
	"sync"

	"github.com/yndnr/medrec/internal/core/domain"
	"github.com/yndnr/medrec/pkg/cmap"
)

// Store holds the active patient records.
type Store struct {
	// Records in admission order.
	records []domain.Patient

	// Id index: patient id -> present
	ids *cmap.Map[int32, struct{}]

	// Shard count of ids, fixed at construction
	shards int

	// Global lock for operations touching both the slice and the index
	mu sync.RWMutex
}

// Option configures the Store.
type Option func(*Store)

// WithCapacity preallocates room for n records.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.records = make([]domain.Patient, 0, n)
		}
	}
}

// WithIndexShards sets the shard count of the id index.
func WithIndexShards(n int) Option {
	return func(s *Store) {
		s.ids = cmap.NewWithShards[int32, struct{}](n)
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		ids: cmap.New[int32, struct{}](),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.shards = s.ids.ShardCount()

	return s
}

// Insert admits a record.
//
// The id is checked before the age. A rejected record leaves the store
// unchanged. The record is normalized before it is stored.
func (s *Store) Insert(p domain.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.ValidateID(p.ID, index{s.ids}) {
		return domain.ErrDuplicateID.WithDetails(idDetail(p.ID))
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.records = append(s.records, p.Normalize())
	s.ids.Set(p.ID, struct{}{})
	return nil
}

// FindByID returns the active record with the given id.
func (s *Store) FindByID(id int32) (domain.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return domain.Patient{}, false
}

// FindByName returns the first record, in store order, whose name matches
// exactly. A trailing line terminator on name is ignored.
func (s *Store) FindByName(name string) (domain.Patient, bool) {
	name = domain.TrimLine(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.records {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Patient{}, false
}

// Delete removes the record with the given id and returns it.
// The relative order of the remaining records is kept.
func (s *Store) Delete(id int32) (domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Patient{}, domain.ErrPatientNotFound.WithDetails(idDetail(id))
	}

	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.ids.Delete(id)
	return removed, nil
}

// All returns a copy of every active record in store order.
func (s *Store) All() []domain.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Patient, len(s.records))
	copy(out, s.records)
	return out
}

// Scan calls fn for each record in store order until fn returns false.
// fn must not call back into the store.
func (s *Store) Scan(fn func(domain.Patient) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.records {
		if !fn(p) {
			return
		}
	}
}

// Count returns the number of active records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Contains reports whether a record with the given id is active.
func (s *Store) Contains(id int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Has(id)
}

// Replace discards every active record and installs records in their place.
//
// Records come from a trusted snapshot and are not validated. When the
// snapshot repeats an id, the first occurrence wins and the count of
// dropped duplicates is returned.
func (s *Store) Replace(records []domain.Patient) int {
	next := make([]domain.Patient, 0, len(records))
	ids := cmap.NewWithShards[int32, struct{}](s.shards)
	dropped := 0
	for _, p := range records {
		if !ids.SetIfAbsent(p.ID, struct{}{}) {
			dropped++
			continue
		}
		next = append(next, p)
	}

	s.mu.Lock()
	s.records = next
	s.ids = ids
	s.mu.Unlock()

	return dropped
}

// Clear removes every active record.
func (s *Store) Clear() {
	s.Replace(nil)
}

// indexOf returns the slice position of id, or -1. Caller holds mu.
func (s *Store) indexOf(id int32) int {
	if !s.ids.Has(id) {
		return -1
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// index adapts the id map to domain.IDLookup without taking the store lock.
type index struct {
	m *cmap.Map[int32, struct{}]
}

func (x index) Contains(id int32) bool { return x.m.Has(id) }

func idDetail(id int32) string {
	return "id " + strconv.FormatInt(int64(id), 10)
}

package neighborhood

import "sync"

// Set maps neighborhood names to records for the lifetime of one search.
// Enrichers write through Update; the response is taken with Seal, after
// which further writes are dropped.
type Set struct {
	mu      sync.Mutex
	records map[string]*Record
	order   []string
	sealed  bool
}

func NewSet() *Set {
	return &Set{records: make(map[string]*Record)}
}

// Add inserts a stub unless its name is already present. First writer wins.
func (s *Set) Add(stub Stub) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false
	}
	if _, ok := s.records[stub.Name]; ok {
		return false
	}
	s.records[stub.Name] = newRecord(stub)
	s.order = append(s.order, stub.Name)
	return true
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Stubs returns the identity fields of every record in insertion order.
func (s *Set) Stubs() []Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Stub, 0, len(s.order))
	for _, name := range s.order {
		r := s.records[name]
		out = append(out, Stub{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude, PlaceID: r.PlaceID})
	}
	return out
}

// Update applies fn to the named record. It reports false when the name is
// unknown or the set is sealed.
func (s *Set) Update(name string, fn func(r *Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return false
	}
	r, ok := s.records[name]
	if !ok {
		return false
	}
	fn(r)
	return true
}

// Snapshot copies the current records.
func (s *Set) Snapshot() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Seal copies the current records and rejects every later write.
func (s *Set) Seal() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
	return s.snapshotLocked()
}

func (s *Set) snapshotLocked() map[string]Record {
	out := make(map[string]Record, len(s.records))
	for name, r := range s.records {
		out[name] = r.clone()
	}
	return out
}

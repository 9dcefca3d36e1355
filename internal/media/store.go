package media

import (
	"strconv"
	"sync"
)

// Asset is anything the store can hold: an *Image or a *Waveform.
type Asset interface {
	Bytes() ([]byte, error)
	Digest() (string, error)
	Extension() string
}

// Entry is a stored asset and the index it was first stored under.
type Entry struct {
	Index  int
	Digest string
	Asset  Asset
}

// Name is the archive member name of the entry, e.g. "3.png".
func (e Entry) Name() string {
	return strconv.Itoa(e.Index) + e.Asset.Extension()
}

// Store deduplicates assets by content. Indices are handed out in insertion
// order starting at zero, so equal assets share one index.
//
// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byHash  map[string]Entry
	entries []Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byHash: make(map[string]Entry)}
}

// Add stores a, returning the existing entry when identical content was added
// before. The boolean reports whether a new entry was created.
func (s *Store) Add(a Asset) (Entry, bool, error) {
	d, err := a.Digest()
	if err != nil {
		return Entry{}, false, err
	}
	key := d + a.Extension()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.byHash[key]; exists {
		return e, false, nil
	}
	e := Entry{Index: len(s.entries), Digest: d, Asset: a}
	s.byHash[key] = e
	s.entries = append(s.entries, e)
	return e, true, nil
}

// Get returns the entry with the given digest and extension.
func (s *Store) Get(digest, ext string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byHash[digest+ext]
	return e, ok
}

// Entries returns every entry in index order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of distinct assets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

package store

import (
	"fmt"
	"sync"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
	"git.lost.host/meutraa/autochart/internal/parser"
	"golang.org/x/exp/slices"
)

// MemoryStore keeps encoded charts in a map, so callers never share a chart
// with the store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[Key][]byte
	entries map[Key]Entry
	parser  parser.DefaultParser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: map[Key][]byte{},
		entries: map[Key]Entry{},
	}
}

func (s *MemoryStore) Get(key Key) (*game.Chart, error) {
	s.mu.Lock()
	data, ok := s.records[key]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	chart, err := s.parser.Unmarshal(data)
	if nil != err {
		return nil, fmt.Errorf("chart %s: %w", key, err)
	}
	return chart, nil
}

func (s *MemoryStore) Put(chart *game.Chart) error {
	key := KeyOf(chart)
	if err := key.validate(); nil != err {
		return err
	}
	data, err := s.parser.Marshal(chart)
	if nil != err {
		return err
	}
	s.PutRaw(key, data)
	s.mu.Lock()
	s.entries[key] = Entry{
		Key:            key,
		AudioReference: chart.AudioReference,
		BPM:            chart.BPM,
		Notes:          chart.NoteCount(),
		Updated:        s.entries[key].Updated,
	}
	s.mu.Unlock()
	return nil
}

// PutRaw stores an already encoded record as is.
func (s *MemoryStore) PutRaw(key Key, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = data
	s.entries[key] = Entry{Key: key, Updated: time.Now().UTC().Truncate(time.Second)}
}

func (s *MemoryStore) Delete(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(s.records, key)
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) bool {
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.Difficulty < b.Difficulty
	})
	return entries, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/fakhrymubarak/weather-lookup-api/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for an identifier.
	ErrNotFound = errors.New("weather record not found")
	// ErrDuplicateID is returned when inserting under an identifier that is already taken.
	ErrDuplicateID = errors.New("weather record id already exists")
)

// WeatherStore holds combined weather records keyed by identifier.
type WeatherStore interface {
	Insert(ctx context.Context, record model.WeatherRecord) error
	Get(ctx context.Context, id string) (model.WeatherRecord, error)
	Len() int
}

// MemoryStore is a concurrency-safe, process-lifetime WeatherStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.WeatherRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.WeatherRecord),
	}
}

func (s *MemoryStore) Insert(_ context.Context, record model.WeatherRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return ErrDuplicateID
	}
	s.records[record.ID] = record
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return model.WeatherRecord{}, ErrNotFound
	}
	return record, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

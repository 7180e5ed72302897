package store

import (
	"context"
	"sync"
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgerror"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

// InMemoryStore keeps normalized uploads until they expire. Tables are never
// mutated after Save, so readers share them without copying.
type InMemoryStore struct {
	mu      sync.RWMutex
	uploads map[string]entity.Upload
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		uploads: make(map[string]entity.Upload),
	}
}

func (s *InMemoryStore) Save(ctx context.Context, upload entity.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[upload.ID]; exists {
		return pkgerror.NewBusiness("upload already exists", pkgerror.CodeConflict)
	}

	s.uploads[upload.ID] = upload

	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, uploadID string) (entity.Upload, error) {
	s.mu.RLock()
	upload, ok := s.uploads[uploadID]
	s.mu.RUnlock()
	if !ok {
		return entity.Upload{}, pkgerror.ErrNotFound
	}

	return upload, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[uploadID]; !ok {
		return pkgerror.ErrNotFound
	}
	delete(s.uploads, uploadID)

	return nil
}

// Sweep removes every upload that expired at or before now and returns how many were removed.
func (s *InMemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, upload := range s.uploads {
		if !now.Before(upload.ExpiresAt) {
			delete(s.uploads, id)
			removed++
		}
	}

	return removed
}

// Clear removes every upload and returns how many were held.
func (s *InMemoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.uploads)
	clear(s.uploads)
	return n
}

// Len returns the number of uploads currently held.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.uploads)
}

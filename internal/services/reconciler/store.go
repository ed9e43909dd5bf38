package reconciler

import (
	"context"
	"sync"

	"bulk-payment-backend/internal/models"
)

// Store persists the reconciler's view of the world: the upload records it
// tracks and the per-job page caches. The reconciler is the only writer.
type Store interface {
	// ListActiveRecords returns tracked uploads not yet locally completed.
	ListActiveRecords(ctx context.Context) ([]models.UploadRecord, error)
	// ListRecords returns every tracked upload, newest first.
	ListRecords(ctx context.Context) ([]models.UploadRecord, error)
	SaveRecord(ctx context.Context, rec *models.UploadRecord) error

	// GetCache returns the job's cache, creating an empty one when missing.
	GetCache(ctx context.Context, jobID string) (*models.JobCache, error)
	SaveCache(ctx context.Context, cache *models.JobCache) error
}

// MemoryStore keeps reconciler state in process memory. Used by tests and as
// the fallback when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.UploadRecord
	caches  map[string]models.JobCache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{caches: make(map[string]models.JobCache)}
}

func (s *MemoryStore) ListActiveRecords(ctx context.Context) ([]models.UploadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []models.UploadRecord
	for _, rec := range s.records {
		if rec.JobID != "" && rec.Status != models.UploadStatusCompleted {
			active = append(active, rec)
		}
	}
	return active, nil
}

func (s *MemoryStore) ListRecords(ctx context.Context) ([]models.UploadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UploadRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) SaveRecord(ctx context.Context, rec *models.UploadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == rec.ID {
			s.records[i] = *rec
			return nil
		}
	}
	s.records = append([]models.UploadRecord{*rec}, s.records...)
	return nil
}

func (s *MemoryStore) GetCache(ctx context.Context, jobID string) (*models.JobCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cache, ok := s.caches[jobID]; ok {
		out := cache
		return &out, nil
	}
	return &models.JobCache{JobID: jobID}, nil
}

func (s *MemoryStore) SaveCache(ctx context.Context, cache *models.JobCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caches[cache.JobID] = *cache
	return nil
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bulk-payment-backend/internal/models"
)

// ReconcilerStore persists upload records and job caches in Postgres so the
// reconciler survives restarts. Implements reconciler.Store.
type ReconcilerStore struct {
	db *gorm.DB
}

func NewReconcilerStore(db *gorm.DB) *ReconcilerStore {
	return &ReconcilerStore{db: db}
}

func (s *ReconcilerStore) ListActiveRecords(ctx context.Context) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	err := s.db.WithContext(ctx).
		Where("job_id <> '' AND status <> ?", models.UploadStatusCompleted).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (s *ReconcilerStore) ListRecords(ctx context.Context) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error
	return records, err
}

func (s *ReconcilerStore) SaveRecord(ctx context.Context, rec *models.UploadRecord) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

func (s *ReconcilerStore) GetCache(ctx context.Context, jobID string) (*models.JobCache, error) {
	var cache models.JobCache
	err := s.db.WithContext(ctx).First(&cache, "job_id = ?", jobID).Error
	if err == gorm.ErrRecordNotFound {
		return &models.JobCache{JobID: jobID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

func (s *ReconcilerStore) SaveCache(ctx context.Context, cache *models.JobCache) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		UpdateAll: true,
	}).Create(cache).Error
}

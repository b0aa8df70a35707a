package history

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the record store. Every call is scoped to one user.
type Repository interface {
	CreateRecord(ctx context.Context, record *ScanRecord) error
	ListRecords(ctx context.Context, userID string) ([]ScanRecord, error)
	DeleteRecord(ctx context.Context, userID string, id uuid.UUID) (int64, error)
	DeleteAllRecords(ctx context.Context, userID string) (int64, error)
}

type postgresRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &postgresRepository{db: db}
}

// Migrate creates or updates the scan_history table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ScanRecord{})
}

func (r *postgresRepository) CreateRecord(ctx context.Context, record *ScanRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *postgresRepository) ListRecords(ctx context.Context, userID string) ([]ScanRecord, error) {
	var records []ScanRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *postgresRepository) DeleteRecord(ctx context.Context, userID string, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&ScanRecord{})
	return result.RowsAffected, result.Error
}

func (r *postgresRepository) DeleteAllRecords(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&ScanRecord{})
	return result.RowsAffected, result.Error
}

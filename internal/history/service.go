package history

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Record(ctx context.Context, userID, summary string) (*ScanRecord, error)
	List(ctx context.Context, userID string) ([]ScanRecord, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
	Export(ctx context.Context, userID string, format ExportFormat, w io.Writer) error
}

type historyService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &historyService{
		repo:   repo,
		logger: logger,
	}
}

func (s *historyService) Record(ctx context.Context, userID, summary string) (*ScanRecord, error) {
	record := &ScanRecord{
		ID:         uuid.New(),
		UserID:     userID,
		ScanResult: summary,
	}

	if err := s.repo.CreateRecord(ctx, record); err != nil {
		s.logger.Error("Failed to save scan history",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, &PersistenceError{Op: "insert", Err: err}
	}

	return record, nil
}

func (s *historyService) List(ctx context.Context, userID string) ([]ScanRecord, error) {
	records, err := s.repo.ListRecords(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load scan history",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	if records == nil {
		records = []ScanRecord{}
	}
	return records, nil
}

func (s *historyService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	deleted, err := s.repo.DeleteRecord(ctx, userID, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *historyService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.repo.DeleteAllRecords(ctx, userID)
	if err != nil {
		return 0, &PersistenceError{Op: "delete all", Err: err}
	}

	s.logger.Info("Scan history cleared",
		zap.String("user_id", userID),
		zap.Int64("deleted", deleted))

	return deleted, nil
}

func (s *historyService) Export(ctx context.Context, userID string, format ExportFormat, w io.Writer) error {
	records, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

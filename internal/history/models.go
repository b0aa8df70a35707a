// Package history stores the outcome of completed verifications per user.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScanRecord is one completed verification. CreatedAt is assigned by the database.
type ScanRecord struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string    `json:"user_id" gorm:"not null;index"`
	ScanResult string    `json:"scan_result" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime:false;default:now();not null;index"`
}

func (ScanRecord) TableName() string {
	return "scan_history"
}

// Summary formats a verdict and confidence the way records store them, e.g. "FORGED (85%)".
func Summary(verdict string, confidence int) string {
	return fmt.Sprintf("%s (%d%%)", verdict, confidence)
}

var ErrNotFound = errors.New("scan record not found")

// PersistenceError wraps a failed read or write against the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

package auditlog

import (
	"context"
	"time"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists audit log entries. Entries are insert-only; the sole
// delete path is retention trimming of the oldest rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	OperatorID string
	Action     enums.LogAction
	Since      time.Time
	Until      time.Time
	Limit      int
}

// Insert appends one entry.
func (r *Repository) Insert(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries most-recent-first, optionally filtered.
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.LogEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.LogEntry{})

	if filter.OperatorID != "" {
		query = query.Where("operator_id = ?", filter.OperatorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		query = query.Where("timestamp > ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("timestamp <= ?", filter.Until)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []models.LogEntry
	if err := query.Order("timestamp DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the total number of stored entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LogEntry{}).Count(&count).Error
	return count, err
}

// TrimOldest removes the oldest entries so at most keep rows remain. Retained
// rows are never touched.
func (r *Repository) TrimOldest(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}

	total, err := r.Count(ctx)
	if err != nil {
		return err
	}
	excess := total - int64(keep)
	if excess <= 0 {
		return nil
	}

	var victims []string
	if err := r.db.WithContext(ctx).
		Model(&models.LogEntry{}).
		Order("timestamp ASC, id ASC").
		Limit(int(excess)).
		Pluck("id", &victims).
		Error; err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", victims).Delete(&models.LogEntry{}).Error
}

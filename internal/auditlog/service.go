package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"gorm.io/gorm"
)

// defaultRetention is the fallback entry cap when none is configured.
const defaultRetention = 5000

// Service records and queries the append-only activity log.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.LogEntry, error)
	List(ctx context.Context, filter Filter) ([]models.LogEntry, error)
}

// RecordInput describes one activity to append.
type RecordInput struct {
	OperatorID     string
	Action         enums.LogAction
	PartID         *string
	PartName       *string
	QuantityChange int
	Remaining      *int
	Timestamp      time.Time
}

type service struct {
	repo      *Repository
	retention int
	now       func() time.Time
}

// NewService builds the audit log service. Retention caps the number of
// stored entries; the oldest rows are dropped once the cap is exceeded.
func NewService(repo *Repository, retention int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auditlog repository required")
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	return &service{repo: repo, retention: retention, now: time.Now}, nil
}

// Record appends an entry inside the caller's transaction. The retention trim
// runs in the same transaction so the mutation and its log line commit or
// roll back together.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.LogEntry, error) {
	if input.OperatorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown log action")
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = s.now().UTC()
	}

	entry := &models.LogEntry{
		ID:             uuid.NewString(),
		Timestamp:      ts,
		OperatorID:     input.OperatorID,
		Action:         input.Action,
		PartID:         input.PartID,
		PartName:       input.PartName,
		QuantityChange: input.QuantityChange,
		Remaining:      input.Remaining,
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Insert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append log entry")
	}
	if err := repo.TrimOldest(ctx, s.retention); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "trim log retention")
	}
	return entry, nil
}

// List returns stored entries newest-first.
func (s *service) List(ctx context.Context, filter Filter) ([]models.LogEntry, error) {
	if filter.Limit <= 0 || filter.Limit > s.retention {
		filter.Limit = s.retention
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list log entries")
	}
	return entries, nil
}

package cron

import (
	"context"
	"fmt"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
)

// RetentionJob enforces the audit log cap outside the hot mutation path. The
// ledger trims on every append already; this sweep catches rows left behind
// after the cap is lowered.
type RetentionJob struct {
	repo *auditlog.Repository
	keep int
}

// NewRetentionJob builds the trim job.
func NewRetentionJob(repo *auditlog.Repository, keep int) (*RetentionJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("auditlog repository required")
	}
	if keep <= 0 {
		return nil, fmt.Errorf("retention cap must be positive")
	}
	return &RetentionJob{repo: repo, keep: keep}, nil
}

func (j *RetentionJob) Name() string {
	return "log_retention_trim"
}

func (j *RetentionJob) Run(ctx context.Context) error {
	return j.repo.TrimOldest(ctx, j.keep)
}

package cron

import (
	"context"
	"fmt"

	"github.com/parttrack/parttrack-backend/internal/notify"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
)

// LowStockJob pushes a Telegram alert when any part has run low.
type LowStockJob struct {
	notifier notify.Service
}

// NewLowStockJob builds the sweep job.
func NewLowStockJob(notifier notify.Service) (*LowStockJob, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notify service required")
	}
	return &LowStockJob{notifier: notifier}, nil
}

func (j *LowStockJob) Name() string {
	return "low_stock_sweep"
}

// Run sends the alert. An unconfigured Telegram channel is not a failure; the
// sweep simply has nowhere to deliver.
func (j *LowStockJob) Run(ctx context.Context) error {
	_, err := j.notifier.SendLowStockAlert(ctx)
	if err != nil && pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return nil
	}
	return err
}

package models

import (
	"time"

	"github.com/parttrack/parttrack-backend/pkg/enums"
)

// LogEntry is one immutable row of the audit trail. Entries are written once by
// the stock ledger, inside the same transaction as the mutation they record,
// and are never updated or individually deleted (retention trimming drops the
// oldest rows wholesale).
type LogEntry struct {
	ID             string          `gorm:"column:id;primaryKey" json:"id"`
	Timestamp      time.Time       `gorm:"column:timestamp;not null;index" json:"timestamp"`
	OperatorID     string          `gorm:"column:operator_id;not null;index" json:"operatorId"`
	Action         enums.LogAction `gorm:"column:action;not null;index" json:"action"`
	PartID         *string         `gorm:"column:part_id" json:"partId,omitempty"`
	PartName       *string         `gorm:"column:part_name" json:"partName,omitempty"`
	QuantityChange int             `gorm:"column:quantity_change;not null" json:"quantityChange"`
	Remaining      *int            `gorm:"column:remaining" json:"remaining,omitempty"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}

package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	ledger.Service
	parts []models.Part
}

func (s stubLedger) List(context.Context) ([]models.Part, error) {
	return s.parts, nil
}

type stubAudit struct {
	auditlog.Service
	entries []models.LogEntry
}

func (s stubAudit) List(context.Context, auditlog.Filter) ([]models.LogEntry, error) {
	return s.entries, nil
}

func TestStockCSV(t *testing.T) {
	parts := []models.Part{
		{ID: "CONN-001", Name: "Connector A", Quantity: 150, Location: models.Location{Rack: "TC6", Row: "E", Bin: "3"}},
		{ID: "HSG-220", Name: "Housing, 20 pin", Quantity: 4, Location: models.Location{Rack: "TC6", Row: "F", Bin: "3"}},
	}
	svc, err := NewService(stubLedger{parts: parts}, stubAudit{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.StockCSV(context.Background(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name", "quantity", "rack", "row", "bin", "location"}, rows[0])
	assert.Equal(t, []string{"CONN-001", "Connector A", "150", "TC6", "E", "3", "TC6-E-3"}, rows[1])
	assert.Equal(t, "Housing, 20 pin", rows[2][1])
}

func TestLogsCSV(t *testing.T) {
	partID := "CONN-001"
	partName := "Connector A"
	remaining := 149
	ts := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	entries := []models.LogEntry{
		{
			ID:             "entry-1",
			Timestamp:      ts,
			OperatorID:     "MOLEX_OPR_1",
			Action:         enums.LogActionTake,
			PartID:         &partID,
			PartName:       &partName,
			QuantityChange: -1,
			Remaining:      &remaining,
		},
		{
			ID:         "entry-2",
			Timestamp:  ts.Add(time.Minute),
			OperatorID: "Supervisor",
			Action:     enums.LogActionReset,
		},
	}
	svc, err := NewService(stubLedger{}, stubAudit{entries: entries})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.LogsCSV(context.Background(), &buf, auditlog.Filter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"entry-1", "2026-08-29T09:30:00Z", "MOLEX_OPR_1", "TAKE", "CONN-001", "Connector A", "-1", "149"}, rows[1])
	assert.Equal(t, "", rows[2][7])
}

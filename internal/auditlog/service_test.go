package auditlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:auditlog_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LogEntry{}))
	return db
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func TestRecord_AppendsEntry(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	entry, err := svc.Record(context.Background(), db, RecordInput{
		OperatorID:     "MOLEX_OPR_1",
		Action:         enums.LogActionTake,
		PartID:         strptr("CONN-001"),
		PartName:       strptr("Connector A"),
		QuantityChange: -1,
		Remaining:      intptr(149),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())

	got, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MOLEX_OPR_1", got[0].OperatorID)
	assert.Equal(t, enums.LogActionTake, got[0].Action)
	assert.Equal(t, -1, got[0].QuantityChange)
	require.NotNil(t, got[0].Remaining)
	assert.Equal(t, 149, *got[0].Remaining)
}

func TestRecord_RejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 10)
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), db, RecordInput{Action: enums.LogActionTake})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Record(context.Background(), db, RecordInput{OperatorID: "MOLEX_OPR_1", Action: "BOGUS"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRecord_TrimsOldestPastRetention(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 5)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		_, err := svc.Record(context.Background(), db, RecordInput{
			OperatorID:     "MOLEX_OPR_2",
			Action:         enums.LogActionRestock,
			PartID:         strptr(fmt.Sprintf("PART-%03d", i)),
			QuantityChange: 10,
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 5)

	// Newest first, and the three oldest rows are gone.
	assert.Equal(t, "PART-007", *got[0].PartID)
	assert.Equal(t, "PART-003", *got[4].PartID)
}

func TestList_Filters(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), 100)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := []RecordInput{
		{OperatorID: "MOLEX_OPR_1", Action: enums.LogActionTake, QuantityChange: -1, Timestamp: base},
		{OperatorID: "MOLEX_OPR_2", Action: enums.LogActionTake, QuantityChange: -1, Timestamp: base.Add(time.Hour)},
		{OperatorID: "MOLEX_OPR_1", Action: enums.LogActionRestock, QuantityChange: 5, Timestamp: base.Add(2 * time.Hour)},
	}
	for _, in := range seed {
		_, err := svc.Record(context.Background(), db, in)
		require.NoError(t, err)
	}

	got, err := svc.List(context.Background(), Filter{OperatorID: "MOLEX_OPR_1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(context.Background(), Filter{Action: enums.LogActionTake})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(context.Background(), Filter{Since: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(context.Background(), Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, enums.LogActionRestock, got[0].Action)
}

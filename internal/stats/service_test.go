package stats

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/settings"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	svc   *service
	audit auditlog.Service
	db    *gorm.DB
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:stats_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LogEntry{}, &models.Setting{}))

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})

	audit, err := auditlog.NewService(auditlog.NewRepository(db), 1000)
	require.NoError(t, err)
	sett, err := settings.NewService(settings.NewRepository(db), logg)
	require.NoError(t, err)

	svc, err := NewService(audit, sett, logg)
	require.NoError(t, err)
	typed := svc.(*service)
	typed.now = func() time.Time { return now }
	return &fixture{svc: typed, audit: audit, db: db}
}

func (f *fixture) take(t *testing.T, operatorID string, at time.Time) {
	t.Helper()
	_, err := f.audit.Record(context.Background(), f.db, auditlog.RecordInput{
		OperatorID:     operatorID,
		Action:         enums.LogActionTake,
		QuantityChange: -1,
		Timestamp:      at,
	})
	require.NoError(t, err)
}

func TestConsumption_GroupsAndSortsByTotal(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	f.take(t, "MOLEX_OPR_1", now.Add(-3*time.Hour))
	f.take(t, "MOLEX_OPR_1", now.Add(-2*time.Hour))
	f.take(t, "MOLEX_OPR_2", now.Add(-1*time.Hour))
	f.take(t, "MOLEX_OPR_1", now.Add(-30*time.Minute))

	report, err := f.svc.Consumption(ctx)
	require.NoError(t, err)
	assert.Nil(t, report.Since)
	require.Len(t, report.Operators, 2)
	assert.Equal(t, "MOLEX_OPR_1", report.Operators[0].OperatorID)
	assert.Equal(t, 3, report.Operators[0].TotalTaken)
	assert.Equal(t, "MOLEX_OPR_2", report.Operators[1].OperatorID)
	assert.Equal(t, 1, report.Operators[1].TotalTaken)
}

func TestConsumption_CarriesDailyBreakdown(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	f.take(t, "MOLEX_OPR_1", now.AddDate(0, 0, -2))
	f.take(t, "MOLEX_OPR_1", now.AddDate(0, 0, -2).Add(time.Hour))
	f.take(t, "MOLEX_OPR_1", now.Add(-time.Hour))
	f.take(t, "MOLEX_OPR_2", now.Add(-30*time.Minute))

	report, err := f.svc.Consumption(ctx)
	require.NoError(t, err)
	require.Len(t, report.Operators, 2)

	top := report.Operators[0]
	assert.Equal(t, "MOLEX_OPR_1", top.OperatorID)
	assert.Equal(t, 3, top.TotalTaken)
	require.Len(t, top.DailyData, 2)
	assert.Equal(t, "Aug 27", top.DailyData[0].Date)
	assert.Equal(t, 2, top.DailyData[0].Taken)
	assert.Equal(t, "Aug 29", top.DailyData[1].Date)
	assert.Equal(t, 1, top.DailyData[1].Taken)

	require.Len(t, report.Operators[1].DailyData, 1)
	assert.Equal(t, "Aug 29", report.Operators[1].DailyData[0].Date)
	assert.Equal(t, 1, report.Operators[1].DailyData[0].Taken)
}

func TestConsumption_IgnoresEntriesBeforeCutoff(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	f.take(t, "MOLEX_OPR_3", time.Now().UTC().Add(-time.Hour))

	cutoff, err := f.svc.Reset(ctx)
	require.NoError(t, err)

	report, err := f.svc.Consumption(ctx)
	require.NoError(t, err)
	require.NotNil(t, report.Since)
	assert.WithinDuration(t, cutoff, *report.Since, time.Second)
	assert.Empty(t, report.Operators)

	f.take(t, "MOLEX_OPR_3", cutoff.Add(time.Minute))
	report, err = f.svc.Consumption(ctx)
	require.NoError(t, err)
	require.Len(t, report.Operators, 1)
	assert.Equal(t, 1, report.Operators[0].TotalTaken)
}

func TestOperatorWeekly_SevenZeroFilledBuckets(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	f.take(t, "MOLEX_OPR_5", now.Add(-2*time.Hour))
	f.take(t, "MOLEX_OPR_5", now.AddDate(0, 0, -2))
	f.take(t, "MOLEX_OPR_5", now.AddDate(0, 0, -2).Add(-time.Hour))
	f.take(t, "MOLEX_OPR_5", now.AddDate(0, 0, -10))
	f.take(t, "MOLEX_OPR_6", now.Add(-time.Hour))

	report, err := f.svc.OperatorWeekly(ctx, "MOLEX_OPR_5")
	require.NoError(t, err)
	require.Len(t, report.Days, 7)

	assert.Equal(t, "Aug 23", report.Days[0].Date)
	assert.Equal(t, "Aug 29", report.Days[6].Date)
	assert.Equal(t, 1, report.Days[6].Taken)
	assert.Equal(t, 2, report.Days[4].Taken)

	total := 0
	for _, day := range report.Days {
		total += day.Taken
	}
	assert.Equal(t, 3, total)
}

func TestOperatorWeekly_RequiresOperatorID(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	_, err := f.svc.OperatorWeekly(context.Background(), "")
	require.Error(t, err)
}

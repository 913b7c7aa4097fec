package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:seed_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Part{}, &models.User{}))
	return db
}

func TestRun_SeedsEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, nil))

	var partCount, userCount int64
	require.NoError(t, db.Model(&models.Part{}).Count(&partCount).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 7, partCount)
	assert.EqualValues(t, 9, userCount)

	var part models.Part
	require.NoError(t, db.First(&part, "id = ?", "HSG-220").Error)
	assert.Equal(t, 4, part.Quantity)
	assert.Equal(t, "TC6-F-3", part.Location.String())
}

func TestRun_LeavesExistingDataAlone(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	existing := models.Part{ID: "REAL-001", Name: "Real part", Quantity: 7, Location: models.Location{Rack: "R", Row: "1", Bin: "1"}}
	require.NoError(t, db.Create(&existing).Error)

	require.NoError(t, Run(ctx, db, nil))

	var partCount int64
	require.NoError(t, db.Model(&models.Part{}).Count(&partCount).Error)
	assert.EqualValues(t, 1, partCount)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 9, userCount)
}

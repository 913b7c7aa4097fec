package users

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/parttrack/parttrack-backend/pkg/db/models"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:users_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(NewRepository(db), logg)
	require.NoError(t, err)
	return svc
}

func TestAdd_WithExplicitID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Add(ctx, AddInput{ID: "MOLEX_OPR_1", Name: "Nagendra"})
	require.NoError(t, err)
	assert.Equal(t, "MOLEX_OPR_1", user.ID)
	assert.Equal(t, "Nagendra", user.Name)
	assert.False(t, user.IsSupervisor)

	_, err = svc.Add(ctx, AddInput{ID: "MOLEX_OPR_1", Name: "Someone Else"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateID))
}

func TestAdd_MintsCredentialWhenIDBlank(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Add(context.Background(), AddInput{Name: "Prakash"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ID, "OPR_"))
	assert.Len(t, user.ID, len("OPR_")+6)
}

func TestAdd_RequiresName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Add(context.Background(), AddInput{Name: "   "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRemove_AndLookup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{ID: "MOLEX_OPR_2", Name: "Anil"})
	require.NoError(t, err)

	found, err := svc.FindByID(ctx, "MOLEX_OPR_2")
	require.NoError(t, err)
	assert.Equal(t, "Anil", found.Name)

	require.NoError(t, svc.Remove(ctx, "MOLEX_OPR_2"))

	_, err = svc.FindByID(ctx, "MOLEX_OPR_2")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.Remove(ctx, "MOLEX_OPR_2")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestList_SortedByName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, u := range []AddInput{
		{ID: "MOLEX_OPR_4", Name: "Shivu"},
		{ID: "MOLEX_OPR_2", Name: "Prakash"},
		{ID: "MOLEX_OPR_1", Name: "Nagendra"},
	} {
		_, err := svc.Add(ctx, u)
		require.NoError(t, err)
	}

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Nagendra", users[0].Name)
	assert.Equal(t, "Shivu", users[2].Name)
}

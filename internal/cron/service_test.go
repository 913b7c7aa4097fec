package cron

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/notify"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.values[key]; exists {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type recordingJob struct {
	name string
	runs int
	err  error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRedisLock_AcquireRelease(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "pt:lock:sweep", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := NewRedisLock(store, "pt:lock:sweep", time.Minute)
	require.NoError(t, err)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))

	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ReleaseIgnoresForeignOwner(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "pt:lock:sweep", time.Minute)
	require.NoError(t, err)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate expiry and takeover by another instance.
	require.NoError(t, store.Del(ctx, "pt:lock:sweep"))
	store.values["pt:lock:sweep"] = "someone-else"

	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["pt:lock:sweep"])
}

func TestService_SweepRunsAllJobs(t *testing.T) {
	store := newMemoryStore()
	lock, err := NewRedisLock(store, "pt:lock:sweep", time.Minute)
	require.NoError(t, err)

	first := &recordingJob{name: "first"}
	second := &recordingJob{name: "second", err: fmt.Errorf("boom")}
	third := &recordingJob{name: "third"}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Lock:     lock,
		Interval: time.Hour,
		Jobs:     []Job{first, second, third},
	})
	require.NoError(t, err)

	require.NoError(t, svc.sweep(context.Background()))

	// A failing job does not stop the sweep, and the lock is released after.
	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, second.runs)
	assert.Equal(t, 1, third.runs)
	assert.Empty(t, store.values)
}

func TestService_SkipsWhenLockHeld(t *testing.T) {
	store := newMemoryStore()
	store.values["pt:lock:sweep"] = "other-instance"

	lock, err := NewRedisLock(store, "pt:lock:sweep", time.Minute)
	require.NoError(t, err)

	job := &recordingJob{name: "first"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Lock:     lock,
		Interval: time.Hour,
		Jobs:     []Job{job},
	})
	require.NoError(t, err)

	require.NoError(t, svc.sweep(context.Background()))
	assert.Zero(t, job.runs)
}

type stubNotifier struct {
	notify.Service
	sends int
	err   error
}

func (s *stubNotifier) SendLowStockAlert(context.Context) (*notify.SendResult, error) {
	s.sends++
	if s.err != nil {
		return nil, s.err
	}
	return &notify.SendResult{PartCount: 1}, nil
}

func TestLowStockJob_TreatsMissingConfigAsNoop(t *testing.T) {
	notifier := &stubNotifier{err: pkgerrors.New(pkgerrors.CodeValidation, "telegram bot token and chat id must be configured")}
	job, err := NewLowStockJob(notifier)
	require.NoError(t, err)

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, notifier.sends)

	notifier.err = pkgerrors.New(pkgerrors.CodeDependency, "send telegram alert")
	assert.Error(t, job.Run(context.Background()))
}

func TestRetentionJob_TrimsExcessEntries(t *testing.T) {
	dsn := fmt.Sprintf("file:cron_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LogEntry{}))

	repo := auditlog.NewRepository(db)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entry := &models.LogEntry{
			ID:         fmt.Sprintf("entry-%02d", i),
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			OperatorID: "MOLEX_OPR_1",
			Action:     enums.LogActionTake,
		}
		require.NoError(t, repo.Insert(context.Background(), entry))
	}

	job, err := NewRetentionJob(repo, 4)
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

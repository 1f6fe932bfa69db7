package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zensync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zensync/internal/core/domain"
	"github.com/custodia-labs/zensync/internal/core/ports/driving"
)

// --- Mock implementations for scheduler testing ---

// schedMockSyncRunner implements driving.SyncRunner, counting calls.
type schedMockSyncRunner struct {
	calls   atomic.Int32
	summary *driving.SyncSummary
	err     error
}

func (m *schedMockSyncRunner) Sync(_ context.Context, _ string) error {
	return m.err
}

func (m *schedMockSyncRunner) SyncAll(_ context.Context, _ driving.SyncOptions) (*driving.SyncSummary, error) {
	m.calls.Add(1)
	return m.summary, m.err
}

func (m *schedMockSyncRunner) Status(_ context.Context, stream string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{Stream: stream}, nil
}

// schedMockAuthService implements driving.AuthService, counting refreshes.
type schedMockAuthService struct {
	refreshes  atomic.Int32
	refreshErr error
}

func (m *schedMockAuthService) Login(_ context.Context) (*domain.OAuthToken, error) {
	return nil, domain.ErrNotImplemented
}

func (m *schedMockAuthService) Check(_ context.Context) (*domain.Account, error) {
	return nil, domain.ErrNotImplemented
}

func (m *schedMockAuthService) Refresh(_ context.Context) error {
	m.refreshes.Add(1)
	return m.refreshErr
}

func (m *schedMockAuthService) Method() domain.AuthMethod {
	return domain.AuthMethodOAuth
}

// dueTaskConfig makes every task due immediately on startup.
func dueTaskConfig() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	for id, task := range cfg.TaskConfigs {
		task.Interval = time.Hour
		cfg.TaskConfigs[id] = task
	}
	return cfg
}

// seedDueTask stores a task whose NextRun is already past.
func seedDueTask(t *testing.T, store *memory.SchedulerStore, id string) {
	t.Helper()
	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       id,
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(-time.Minute),
	}))
}

// --- Tests ---

func TestScheduler_StartInitialisesTasks(t *testing.T) {
	store := memory.NewSchedulerStore()
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, &schedMockSyncRunner{}, &schedMockAuthService{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		tasks, err := store.ListTasks(context.Background())
		return err == nil && len(tasks) == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())

	task, err := store.GetTask(context.Background(), domain.TaskIDStreamSync)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, task.Enabled)
	assert.False(t, task.NextRun.IsZero())
}

func TestScheduler_RunsDueStreamSync(t *testing.T) {
	store := memory.NewSchedulerStore()
	runner := &schedMockSyncRunner{summary: &driving.SyncSummary{RecordCount: 12}}
	seedDueTask(t, store, domain.TaskIDStreamSync)

	scheduler := NewScheduler(dueTaskConfig(), store, runner, &schedMockAuthService{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return runner.calls.Load() > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())

	// Result recorded with the record count
	history, err := store.GetTaskHistory(context.Background(), domain.TaskIDStreamSync, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Success)
	assert.Equal(t, 12, history[0].ItemsProcessed)

	// NextRun pushed forward
	task, err := store.GetTask(context.Background(), domain.TaskIDStreamSync)
	require.NoError(t, err)
	assert.True(t, task.NextRun.After(time.Now()))
}

func TestScheduler_RunsDueOAuthRefresh(t *testing.T) {
	store := memory.NewSchedulerStore()
	auth := &schedMockAuthService{}
	seedDueTask(t, store, domain.TaskIDOAuthRefresh)

	scheduler := NewScheduler(dueTaskConfig(), store, &schedMockSyncRunner{}, auth)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return auth.refreshes.Load() > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())
}

func TestScheduler_RecordsTaskFailure(t *testing.T) {
	store := memory.NewSchedulerStore()
	runner := &schedMockSyncRunner{err: errors.New("upstream down")}
	seedDueTask(t, store, domain.TaskIDStreamSync)

	scheduler := NewScheduler(dueTaskConfig(), store, runner, &schedMockAuthService{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		history, err := store.GetTaskHistory(context.Background(), domain.TaskIDStreamSync, 1)
		return err == nil && len(history) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())

	history, err := store.GetTaskHistory(context.Background(), domain.TaskIDStreamSync, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Contains(t, history[0].Error, "upstream down")

	task, err := store.GetTask(context.Background(), domain.TaskIDStreamSync)
	require.NoError(t, err)
	assert.Contains(t, task.LastError, "upstream down")
}

func TestScheduler_SkipsDisabledTask(t *testing.T) {
	store := memory.NewSchedulerStore()
	runner := &schedMockSyncRunner{}

	require.NoError(t, store.SaveTask(context.Background(), &domain.ScheduledTask{
		ID:       domain.TaskIDStreamSync,
		Interval: time.Hour,
		Enabled:  false,
		NextRun:  time.Now().Add(-time.Minute),
	}))

	cfg := dueTaskConfig()
	task := cfg.TaskConfigs[domain.TaskIDStreamSync]
	task.Enabled = false
	cfg.TaskConfigs[domain.TaskIDStreamSync] = task

	scheduler := NewScheduler(cfg, store, runner, &schedMockAuthService{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, scheduler.Stop())

	assert.Equal(t, int32(0), runner.calls.Load())
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), memory.NewSchedulerStore(), &schedMockSyncRunner{}, &schedMockAuthService{})

	// Stop before Start is a no-op
	require.NoError(t, scheduler.Stop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = scheduler.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, scheduler.Stop())
	require.NoError(t, scheduler.Stop())
}

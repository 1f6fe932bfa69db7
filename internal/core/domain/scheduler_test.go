package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.NotNil(t, config.TaskConfigs)
	assert.Len(t, config.TaskConfigs, 2)

	// OAuth refresh config
	oauthCfg := config.TaskConfigs[TaskIDOAuthRefresh]
	assert.True(t, oauthCfg.Enabled)
	assert.Equal(t, 45*time.Minute, oauthCfg.Interval)

	// Stream sync config
	syncCfg := config.TaskConfigs[TaskIDStreamSync]
	assert.True(t, syncCfg.Enabled)
	assert.Equal(t, 1*time.Hour, syncCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	// Existing task
	oauthCfg := config.GetTaskConfig(TaskIDOAuthRefresh)
	assert.True(t, oauthCfg.Enabled)
	assert.Equal(t, 45*time.Minute, oauthCfg.Interval)

	// Non-existent task
	unknownCfg := config.GetTaskConfig("unknown-task")
	assert.False(t, unknownCfg.Enabled)
	assert.Equal(t, time.Duration(0), unknownCfg.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{
		Enabled:     true,
		TaskConfigs: nil,
	}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestTaskConstants(t *testing.T) {
	assert.Equal(t, "oauth-refresh", TaskIDOAuthRefresh)
	assert.Equal(t, "stream-sync", TaskIDStreamSync)
}

func TestTaskResult_Failed(t *testing.T) {
	now := time.Now()
	result := TaskResult{
		TaskID:         "stream-sync",
		StartedAt:      now.Add(-5 * time.Minute),
		EndedAt:        now,
		Success:        false,
		Error:          "connection timeout",
		ItemsProcessed: 0,
	}

	assert.False(t, result.Success)
	assert.Equal(t, "connection timeout", result.Error)
}

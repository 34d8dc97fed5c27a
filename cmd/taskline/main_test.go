package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasklinehq/taskline/internal/config"
)

func TestResolveConfigFlagOverrides(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvTeam, "")

	oldTasks, oldPlans := tasksDir, plansDir
	defer func() { tasksDir, plansDir = oldTasks, oldPlans }()

	tasksDir = "override/tasks"
	plansDir = ""
	cfg := resolveConfig()
	assert.Equal(t, "override/tasks", cfg.TasksDir)
	assert.Equal(t, "plans", cfg.PlansDir, "unset flag keeps the config value")
}

func TestRequireRemoteWithoutCredential(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	cfg := resolveConfig()
	assert.False(t, requireRemote(cfg), "missing credential is a graceful skip")
}

func TestRequireRemoteWithCredential(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "lin_api_test")
	cfg := resolveConfig()
	assert.True(t, requireRemote(cfg))
}

// Package config resolves the per-invocation configuration: credential,
// team/project scope, directories, and mapping overrides.
//
// The resolved Config is constructed once per command and threaded as a
// parameter into everything that touches the remote; nothing reads
// ambient global state after resolution.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/mapping"
	"github.com/tasklinehq/taskline/internal/types"
)

// Environment variables consulted during resolution.
const (
	EnvAPIKey = "LINEAR_API_KEY"
	EnvTeam   = "TASKLINE_TEAM"
)

// DefaultConfigFile is looked for in the working directory.
const DefaultConfigFile = ".taskline.yml"

// Source records where a resolved value came from, for `taskline config`.
type Source string

const (
	SourceEnv      Source = "env"
	SourceFile     Source = "file"
	SourceDetected Source = "detected"
	SourceDefault  Source = "default"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	APIKey      string
	Team        string // team key or name; empty means auto-detect
	TeamSource  Source
	ProjectID   string
	TasksDir    string
	PlansDir    string
	StatusMap   mapping.StatusMap
	PriorityMap mapping.PriorityMap
}

// fileConfig is the optional YAML config file shape.
type fileConfig struct {
	Team        string            `yaml:"team,omitempty"`
	Project     string            `yaml:"project,omitempty"`
	TasksDir    string            `yaml:"tasks_dir,omitempty"`
	PlansDir    string            `yaml:"plans_dir,omitempty"`
	StatusMap   map[string]string `yaml:"status_map,omitempty"`
	PriorityMap map[string]int    `yaml:"priority_map,omitempty"`
}

// Load resolves configuration from the environment plus an optional YAML
// file. A missing or malformed file falls back to defaults: persisted
// configuration is best-effort, never fatal.
func Load(path string) *Config {
	cfg := &Config{
		APIKey:      os.Getenv(EnvAPIKey),
		TeamSource:  SourceDefault,
		TasksDir:    ".tasks",
		PlansDir:    "plans",
		StatusMap:   mapping.DefaultStatusMap(),
		PriorityMap: mapping.DefaultPriorityMap(),
	}

	if data, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if yaml.Unmarshal(data, &fc) == nil {
			if fc.Team != "" {
				cfg.Team = fc.Team
				cfg.TeamSource = SourceFile
			}
			if fc.Project != "" {
				cfg.ProjectID = fc.Project
			}
			if fc.TasksDir != "" {
				cfg.TasksDir = fc.TasksDir
			}
			if fc.PlansDir != "" {
				cfg.PlansDir = fc.PlansDir
			}
			for key, name := range fc.StatusMap {
				status := types.Status(key)
				if status.IsValid() && name != "" {
					cfg.StatusMap[status] = name
				}
			}
			for key, n := range fc.PriorityMap {
				priority := types.Priority(key)
				if priority.IsValid() && n > 0 {
					cfg.PriorityMap[priority] = n
				}
			}
		}
	}

	if team := os.Getenv(EnvTeam); team != "" {
		cfg.Team = team
		cfg.TeamSource = SourceEnv
	}

	return cfg
}

// HasCredentials reports whether remote-touching operations can run.
// Absence is not an error: every remote operation no-ops with a skip
// message so the local file workflow keeps functioning standalone.
func (c *Config) HasCredentials() bool {
	return c.APIKey != ""
}

// AmbiguousTeamError is returned when multiple teams exist and none was
// configured. Fatal for the invocation; the choices are printed.
type AmbiguousTeamError struct {
	Teams []*linear.Team
}

func (e *AmbiguousTeamError) Error() string {
	keys := make([]string, len(e.Teams))
	for i, team := range e.Teams {
		keys[i] = team.Key
	}
	return fmt.Sprintf("multiple teams available (%s); set team in %s or %s",
		strings.Join(keys, ", "), DefaultConfigFile, EnvTeam)
}

// ResolveTeam resolves the team scope: explicit configuration first, then
// auto-detection when exactly one team exists, then a loud failure. No
// silent default among multiple teams.
func (c *Config) ResolveTeam(ctx context.Context, client linear.Client) (*linear.Team, error) {
	teams, err := client.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}

	if c.Team != "" {
		for _, team := range teams {
			if strings.EqualFold(team.Key, c.Team) || strings.EqualFold(team.Name, c.Team) {
				return team, nil
			}
		}
		return nil, fmt.Errorf("configured team %q not found", c.Team)
	}

	switch len(teams) {
	case 0:
		return nil, fmt.Errorf("no teams visible to this credential")
	case 1:
		c.TeamSource = SourceDetected
		return teams[0], nil
	default:
		return nil, &AmbiguousTeamError{Teams: teams}
	}
}

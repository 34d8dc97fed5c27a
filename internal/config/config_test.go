package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/types"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvTeam, "")

	cfg := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.False(t, cfg.HasCredentials())
	assert.Equal(t, ".tasks", cfg.TasksDir)
	assert.Equal(t, "plans", cfg.PlansDir)
	assert.Equal(t, "Triage", cfg.StatusMap[types.StatusPending])
	assert.Equal(t, 1, cfg.PriorityMap[types.PriorityP1])
	assert.Equal(t, SourceDefault, cfg.TeamSource)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "lin_api_test")
	t.Setenv(EnvTeam, "")

	path := filepath.Join(t.TempDir(), ".taskline.yml")
	content := `team: ENG
tasks_dir: work/tasks
status_map:
  pending: Backlog
  bogus: Ignored
priority_map:
  p1: 1
  p2: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := Load(path)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "ENG", cfg.Team)
	assert.Equal(t, SourceFile, cfg.TeamSource)
	assert.Equal(t, "work/tasks", cfg.TasksDir)
	assert.Equal(t, "Backlog", cfg.StatusMap[types.StatusPending])
	assert.Equal(t, "Todo", cfg.StatusMap[types.StatusReady], "unlisted statuses keep defaults")
	assert.Equal(t, 3, cfg.PriorityMap[types.PriorityP2])
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvTeam, "")

	path := filepath.Join(t.TempDir(), ".taskline.yml")
	require.NoError(t, os.WriteFile(path, []byte("team: [unclosed\n"), 0644))

	cfg := Load(path)
	assert.Equal(t, ".tasks", cfg.TasksDir)
	assert.Equal(t, "", cfg.Team)
}

func TestEnvTeamOverridesFile(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvTeam, "OPS")

	path := filepath.Join(t.TempDir(), ".taskline.yml")
	require.NoError(t, os.WriteFile(path, []byte("team: ENG\n"), 0644))

	cfg := Load(path)
	assert.Equal(t, "OPS", cfg.Team)
	assert.Equal(t, SourceEnv, cfg.TeamSource)
}

// teamsClient is a linear.Client stub for team resolution tests.
type teamsClient struct {
	teams []*linear.Team
}

func (c *teamsClient) Teams(ctx context.Context) ([]*linear.Team, error) { return c.teams, nil }
func (c *teamsClient) Issue(ctx context.Context, id string) (*linear.Issue, error) {
	return nil, nil
}
func (c *teamsClient) ListIssues(ctx context.Context, teamID string) ([]*linear.Issue, error) {
	return nil, nil
}
func (c *teamsClient) CreateIssue(ctx context.Context, input linear.IssueCreate) (*linear.Issue, error) {
	return nil, nil
}
func (c *teamsClient) UpdateIssue(ctx context.Context, id string, input linear.IssueUpdate) error {
	return nil
}
func (c *teamsClient) Comments(ctx context.Context, issueID string) ([]*linear.Comment, error) {
	return nil, nil
}
func (c *teamsClient) CreateComment(ctx context.Context, issueID, body string) error { return nil }
func (c *teamsClient) WorkflowStates(ctx context.Context, teamID string) ([]*linear.WorkflowState, error) {
	return nil, nil
}

func TestResolveTeamExplicit(t *testing.T) {
	client := &teamsClient{teams: []*linear.Team{
		{ID: "t1", Key: "ENG", Name: "Engineering"},
		{ID: "t2", Key: "OPS", Name: "Operations"},
	}}
	cfg := &Config{Team: "eng"}

	team, err := cfg.ResolveTeam(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "t1", team.ID)
}

func TestResolveTeamByName(t *testing.T) {
	client := &teamsClient{teams: []*linear.Team{{ID: "t2", Key: "OPS", Name: "Operations"}}}
	cfg := &Config{Team: "operations"}

	team, err := cfg.ResolveTeam(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "t2", team.ID)
}

func TestResolveTeamNotFound(t *testing.T) {
	client := &teamsClient{teams: []*linear.Team{{ID: "t1", Key: "ENG", Name: "Engineering"}}}
	cfg := &Config{Team: "NOPE"}

	_, err := cfg.ResolveTeam(context.Background(), client)
	assert.Error(t, err)
}

func TestResolveTeamAutoDetectSingle(t *testing.T) {
	client := &teamsClient{teams: []*linear.Team{{ID: "t1", Key: "ENG", Name: "Engineering"}}}
	cfg := &Config{}

	team, err := cfg.ResolveTeam(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "t1", team.ID)
	assert.Equal(t, SourceDetected, cfg.TeamSource)
}

func TestResolveTeamAmbiguous(t *testing.T) {
	client := &teamsClient{teams: []*linear.Team{
		{ID: "t1", Key: "ENG", Name: "Engineering"},
		{ID: "t2", Key: "OPS", Name: "Operations"},
	}}
	cfg := &Config{}

	_, err := cfg.ResolveTeam(context.Background(), client)
	var ambiguous *AmbiguousTeamError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Teams, 2)
	assert.Contains(t, err.Error(), "ENG")
	assert.Contains(t, err.Error(), "OPS")
}

func TestResolveTeamNoTeams(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.ResolveTeam(context.Background(), &teamsClient{})
	assert.Error(t, err)
}

package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklinehq/taskline/internal/types"
)

func TestCreateFromFile(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	path := writeTask(t, dir, &types.TaskRecord{
		IssueID: "001", Status: types.StatusReady, Priority: types.PriorityP1, Title: "Ship it",
	}, t1)

	engine := newTestEngine(t, dir, client)
	record, err := engine.CreateFromFile(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, "ENG-100", record.RemoteID)
	require.Len(t, client.created, 1)
	assert.Equal(t, "Ship it", client.created[0].Title)
	assert.Equal(t, "st-todo", client.created[0].StateID)
	assert.Equal(t, 1, client.created[0].Priority)

	// The link and sync timestamp are persisted together.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "remote_id: ENG-100")
	assert.Contains(t, string(data), "last_synced_at:")
}

func TestCreateFromFileWithParent(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	client.addIssue("ENG-10", "Epic", "In Progress", 2, t0)
	path := writeTask(t, dir, &types.TaskRecord{
		IssueID: "002", Status: types.StatusPending, Priority: types.PriorityP3, Title: "Subtask",
	}, t1)

	engine := newTestEngine(t, dir, client)
	_, err := engine.CreateFromFile(context.Background(), path, "ENG-10")
	require.NoError(t, err)

	require.Len(t, client.created, 1)
	assert.Equal(t, "uuid-ENG-10", client.created[0].ParentID, "parent identifier resolves to the opaque id")
}

func TestCreateFromFileAlreadyLinked(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	path := writeTask(t, dir, &types.TaskRecord{
		IssueID: "001", Status: types.StatusReady, Priority: types.PriorityP1,
		RemoteID: "ENG-5", LastSyncedAt: &t0, Title: "Ship it",
	}, t1)

	engine := newTestEngine(t, dir, client)
	_, err := engine.CreateFromFile(context.Background(), path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already linked")
	assert.Empty(t, client.created)
}

func TestCreateFromFileBadParent(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	path := writeTask(t, dir, &types.TaskRecord{
		IssueID: "001", Status: types.StatusReady, Priority: types.PriorityP1, Title: "Ship it",
	}, t1)

	engine := newTestEngine(t, dir, client)
	_, err := engine.CreateFromFile(context.Background(), path, "ENG-404")
	require.Error(t, err)
	assert.Empty(t, client.created, "nothing is created when the parent cannot resolve")
}

func TestCancel(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	client.addIssue("ENG-42", "Task 007", "In Progress", 2, t1)
	writeTask(t, dir, &types.TaskRecord{
		IssueID: "007", Status: types.StatusInProgress, Priority: types.PriorityP2,
		RemoteID: "ENG-42", LastSyncedAt: &t0, Title: "Task 007",
	}, t0)

	engine := newTestEngine(t, dir, client)
	require.NoError(t, engine.Cancel(context.Background(), "ENG-42", "superseded by ENG-50"))

	require.Len(t, client.updates["ENG-42"], 1)
	require.NotNil(t, client.updates["ENG-42"][0].StateID)
	assert.Equal(t, "st-cancelled", *client.updates["ENG-42"][0].StateID)
	assert.Equal(t, []string{"superseded by ENG-50"}, client.commentsSent["ENG-42"])

	record := readTask(t, dir, "ENG-42")
	assert.Equal(t, types.StatusCancelled, record.Status)
	assert.Equal(t, "007-cancelled-p2-task-007.md", filepath.Base(record.Path),
		"cancellation is a rename, not a deletion")
	require.NotNil(t, record.LastSyncedAt)
	assert.True(t, record.LastSyncedAt.After(t0))
}

func TestCancelAlreadyCancelledSkipsUpdate(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	client.addIssue("ENG-42", "Task 007", "Cancelled", 2, t1)

	engine := newTestEngine(t, dir, client)
	require.NoError(t, engine.Cancel(context.Background(), "ENG-42", ""))
	assert.Empty(t, client.updates["ENG-42"], "no-op state writes are skipped")
	assert.Empty(t, client.commentsSent["ENG-42"])
}

func TestCancelWithoutLocalRecord(t *testing.T) {
	dir := t.TempDir()
	client := newFakeClient()
	client.addIssue("ENG-42", "Remote only", "In Progress", 2, t1)

	engine := newTestEngine(t, dir, client)
	require.NoError(t, engine.Cancel(context.Background(), "ENG-42", ""))
	require.Len(t, client.updates["ENG-42"], 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "cancel never creates local files")
}

package taskfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklinehq/taskline/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func taskContent(status, priority, id string) string {
	return "---\nstatus: " + status + "\npriority: " + priority + "\nissue_id: \"" + id + "\"\n---\n\n# Task " + id + "\n"
}

func TestLoadAllSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001-pending-p2-first.md", taskContent("pending", "p2", "001"))
	writeFile(t, dir, "002-ready-p1-second.md", taskContent("ready", "p1", "002"))
	writeFile(t, dir, "README.md", "# Not a task\n")
	writeFile(t, dir, "notes.txt", "scratch\n")
	writeFile(t, dir, "broken.md", "---\nstatus: pending\n---\nmissing fields\n")

	store := NewStore(dir, "")
	records, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "001", records[0].IssueID)
	assert.Equal(t, "002", records[1].IssueID)
}

func TestLoadAllMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"), "")
	records, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "007-pending-p2-fix-bug.md", taskContent("pending", "p2", "007"))

	record := &types.TaskRecord{Path: path, Status: types.StatusPending, Priority: types.PriorityP2, IssueID: "007"}
	store := NewStore(dir, "")

	renamed, err := store.Rename(record, types.StatusReady, types.PriorityP2)
	require.NoError(t, err)
	assert.True(t, renamed)
	assert.Equal(t, filepath.Join(dir, "007-ready-p2-fix-bug.md"), record.Path)

	_, err = os.Stat(record.Path)
	assert.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRenameSkipsLegacyNames(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hand-edited-name.md", taskContent("pending", "p2", "007"))

	record := &types.TaskRecord{Path: path, Status: types.StatusPending, Priority: types.PriorityP2, IssueID: "007"}
	store := NewStore(dir, "")

	renamed, err := store.Rename(record, types.StatusReady, types.PriorityP1)
	require.NoError(t, err)
	assert.False(t, renamed)
	assert.Equal(t, path, record.Path, "legacy names keep their old path")
}

func TestRenameNoopWhenTokensUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "007-pending-p2-fix-bug.md", taskContent("pending", "p2", "007"))

	record := &types.TaskRecord{Path: path, Status: types.StatusPending, Priority: types.PriorityP2, IssueID: "007"}
	store := NewStore(dir, "")

	renamed, err := store.Rename(record, types.StatusPending, types.PriorityP2)
	require.NoError(t, err)
	assert.False(t, renamed)
}

func TestRestamp(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "001-pending-p2-first.md", taskContent("pending", "p2", "001"))
	store := NewStore(dir, "")

	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Restamp(path, ts))
	mtime, err := store.Mtime(path)
	require.NoError(t, err)
	assert.True(t, mtime.Equal(ts))

	// Zero timestamps are ignored rather than rewinding the file to 1970.
	require.NoError(t, store.Restamp(path, time.Time{}))
	mtime, err = store.Mtime(path)
	require.NoError(t, err)
	assert.True(t, mtime.Equal(ts))
}

func TestNextSequenceID(t *testing.T) {
	records := []*types.TaskRecord{
		{IssueID: "003"}, {IssueID: "012"}, {IssueID: "007"},
	}
	assert.Equal(t, "013", NextSequenceID(records))
	assert.Equal(t, "001", NextSequenceID(nil))
}

func TestCreateTask(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tasks")
	store := NewStore(dir, "")

	record := &types.TaskRecord{
		Title:    "Add rate limiting",
		Status:   types.StatusPending,
		Priority: types.PriorityP2,
		IssueID:  "014",
		Body:     "# Add rate limiting\n",
	}
	require.NoError(t, store.CreateTask(record))
	assert.Equal(t, filepath.Join(dir, "014-pending-p2-add-rate-limiting.md"), record.Path)

	data, err := os.ReadFile(record.Path)
	require.NoError(t, err)
	again, err := DecodeTask(record.Path, data)
	require.NoError(t, err)
	assert.Equal(t, "014", again.IssueID)
	assert.Equal(t, "Add rate limiting", again.Title)
}

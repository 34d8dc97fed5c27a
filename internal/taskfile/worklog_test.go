package taskfile

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkLogEntry(t *testing.T) {
	ts := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	entry := WorkLogEntry(ts, "alice", "looks good to me")
	assert.Equal(t, "- **2026-08-15** (alice): looks good to me", entry)
}

func TestWorkLogEntryMultiline(t *testing.T) {
	ts := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	entry := WorkLogEntry(ts, "bob", "first line\nsecond line")
	assert.Equal(t, "- **2026-08-15** (bob): first line\n  second line", entry)
}

func TestWorkLogEntryUnknownAuthor(t *testing.T) {
	ts := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	assert.Contains(t, WorkLogEntry(ts, "", "hi"), "(unknown)")
}

func TestAppendWorkLogCreatesSection(t *testing.T) {
	body := "# Title\n\nSome description.\n"
	got := AppendWorkLog(body, "- entry one")
	assert.Equal(t, "# Title\n\nSome description.\n\n## Work Log\n\n- entry one\n", got)
}

func TestAppendWorkLogEmptyBody(t *testing.T) {
	got := AppendWorkLog("", "- entry one")
	assert.Equal(t, "## Work Log\n\n- entry one\n", got)
}

func TestAppendWorkLogAppendsInOrder(t *testing.T) {
	body := AppendWorkLog("# Title\n", "- first")
	body = AppendWorkLog(body, "- second")
	body = AppendWorkLog(body, "- third")

	first := indexOf(t, body, "- first")
	second := indexOf(t, body, "- second")
	third := indexOf(t, body, "- third")
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestAppendWorkLogStopsBeforeNextHeading(t *testing.T) {
	body := "# Title\n\n## Work Log\n\n- old entry\n\n## Notes\n\nKeep me last.\n"
	got := AppendWorkLog(body, "- new entry")

	oldIdx := indexOf(t, got, "- old entry")
	newIdx := indexOf(t, got, "- new entry")
	notesIdx := indexOf(t, got, "## Notes")
	assert.Less(t, oldIdx, newIdx)
	assert.Less(t, newIdx, notesIdx)
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	if idx < 0 {
		t.Fatalf("%q not found in %q", sub, s)
	}
	return idx
}

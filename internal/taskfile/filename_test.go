package taskfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasklinehq/taskline/internal/types"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Fix login bug", "fix-login-bug"},
		{"  Lots   of   spaces  ", "lots-of-spaces"},
		{"CAPS and punct!?", "caps-and-punct"},
		{"émoji ✨ stripped", "moji-stripped"},
		{"", "untitled"},
		{"---", "untitled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title), "title %q", tt.title)
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	slug := Slugify(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(slug), 50)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestComputeFilename(t *testing.T) {
	name := ComputeFilename("7", types.StatusPending, types.PriorityP2, "fix-bug")
	assert.Equal(t, "007-pending-p2-fix-bug.md", name)

	name = ComputeFilename("013", types.StatusInProgress, types.PriorityP1, "big-feature")
	assert.Equal(t, "013-in-progress-p1-big-feature.md", name)
}

func TestSplitFilename(t *testing.T) {
	seq, status, priority, slug, ok := splitFilename("007-pending-p2-fix-bug.md")
	assert.True(t, ok)
	assert.Equal(t, "007", seq)
	assert.Equal(t, types.StatusPending, status)
	assert.Equal(t, types.PriorityP2, priority)
	assert.Equal(t, "fix-bug", slug)
}

func TestSplitFilenameHyphenatedStatus(t *testing.T) {
	// "in-progress" contains the token separator; matching is by
	// enumeration, not by blind splitting.
	seq, status, priority, slug, ok := splitFilename(".tasks/013-in-progress-p1-big-feature.md")
	assert.True(t, ok)
	assert.Equal(t, "013", seq)
	assert.Equal(t, types.StatusInProgress, status)
	assert.Equal(t, types.PriorityP1, priority)
	assert.Equal(t, "big-feature", slug)
}

func TestSplitFilenameRejectsLegacyNames(t *testing.T) {
	for _, name := range []string{
		"notes.md",
		"fix-bug.md",
		"007-wip-p2-fix-bug.md",     // unknown status token
		"007-pending-px-fix-bug.md", // unknown priority token
		"007-pending-p2-.md",        // empty slug
		"abc-pending-p2-fix-bug.md", // non-numeric sequence id
	} {
		_, _, _, _, ok := splitFilename(name)
		assert.False(t, ok, "expected %q to be rejected", name)
	}
}

func TestTitleFromSlug(t *testing.T) {
	assert.Equal(t, "fix bug", titleFromSlug("007-pending-p2-fix-bug.md"))
	assert.Equal(t, "random notes", titleFromSlug("random-notes.md"))
}

package taskfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tasklinehq/taskline/internal/types"
)

const maxSlugLen = 50

// Slugify derives a filename slug from a title: lowercase, hyphenated,
// length-capped. Computed once at creation and preserved through renames.
func Slugify(title string) string {
	var sb strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// ComputeFilename builds a filename per the naming contract:
// {sequenceId}-{status}-{priority}-{slug}.md with a 3-digit zero-padded
// sequence id.
func ComputeFilename(sequenceID string, status types.Status, priority types.Priority, slug string) string {
	return fmt.Sprintf("%s-%s-%s-%s.md", padSequenceID(sequenceID), status, priority, slug)
}

func padSequenceID(id string) string {
	for len(id) < 3 {
		id = "0" + id
	}
	return id
}

// splitFilename decomposes a task filename into its four tokens. The
// status token can itself contain hyphens ("in-progress"), so status and
// priority are matched against the closed enumerations rather than split
// blindly. ok is false for legacy or hand-edited names that don't follow
// the contract.
func splitFilename(name string) (seq string, status types.Status, priority types.Priority, slug string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(name), ".md")

	dash := strings.IndexByte(base, '-')
	if dash <= 0 {
		return
	}
	seq = base[:dash]
	for _, c := range seq {
		if c < '0' || c > '9' {
			return
		}
	}
	rest := base[dash+1:]

	for _, s := range types.AllStatuses() {
		if strings.HasPrefix(rest, string(s)+"-") {
			status = s
			rest = rest[len(s)+1:]
			break
		}
	}
	if status == "" {
		return
	}

	for _, p := range types.AllPriorities() {
		if strings.HasPrefix(rest, string(p)+"-") {
			priority = p
			rest = rest[len(p)+1:]
			break
		}
	}
	if priority == "" || rest == "" {
		return
	}

	return seq, status, priority, rest, true
}

// titleFromSlug reconstructs a human-readable title from a filename's slug
// token, used when the body carries no heading.
func titleFromSlug(path string) string {
	_, _, _, slug, ok := splitFilename(path)
	if !ok {
		slug = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	return strings.ReplaceAll(slug, "-", " ")
}

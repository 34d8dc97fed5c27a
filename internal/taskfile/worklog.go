package taskfile

import (
	"fmt"
	"strings"
	"time"
)

const workLogHeading = "## Work Log"

// WorkLogEntry formats one synced remote comment as a dated Work Log line.
func WorkLogEntry(createdAt time.Time, author, body string) string {
	if author == "" {
		author = "unknown"
	}
	// Multi-line comment bodies are indented so they stay inside the
	// list item.
	body = strings.ReplaceAll(strings.TrimSpace(body), "\n", "\n  ")
	return fmt.Sprintf("- **%s** (%s): %s", createdAt.UTC().Format("2006-01-02"), author, body)
}

// AppendWorkLog appends an entry to the body's Work Log section, creating
// the section at the end of the body when it doesn't exist yet. The
// section is append-only; existing entries are never touched.
func AppendWorkLog(body, entry string) string {
	idx := findWorkLog(body)
	if idx < 0 {
		body = strings.TrimRight(body, "\n")
		if body == "" {
			return workLogHeading + "\n\n" + entry + "\n"
		}
		return body + "\n\n" + workLogHeading + "\n\n" + entry + "\n"
	}

	// Insert at the end of the Work Log section: just before the next
	// heading of the same or higher level, or at end of body.
	sectionEnd := len(body)
	rest := body[idx+len(workLogHeading):]
	for _, prefix := range []string{"\n## ", "\n# "} {
		if next := strings.Index(rest, prefix); next >= 0 {
			end := idx + len(workLogHeading) + next
			if end < sectionEnd {
				sectionEnd = end
			}
		}
	}

	section := strings.TrimRight(body[:sectionEnd], "\n")
	return section + "\n" + entry + "\n" + body[sectionEnd:]
}

// findWorkLog returns the byte offset of the Work Log heading line, or -1.
func findWorkLog(body string) int {
	if strings.HasPrefix(body, workLogHeading) {
		return 0
	}
	idx := strings.Index(body, "\n"+workLogHeading)
	if idx < 0 {
		return -1
	}
	return idx + 1
}

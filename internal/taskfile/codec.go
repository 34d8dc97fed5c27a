// Package taskfile reads and writes the local task and plan files: YAML
// frontmatter parsing, the filename contract, slug derivation, and the
// Work Log section.
package taskfile

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/tasklinehq/taskline/internal/types"
)

const frontmatterFence = "---"

// taskMeta is the on-disk frontmatter shape for task files.
type taskMeta struct {
	Status       string   `yaml:"status"`
	Priority     string   `yaml:"priority"`
	IssueID      string   `yaml:"issue_id"`
	Tags         []string `yaml:"tags,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	RemoteID     string   `yaml:"remote_id,omitempty"`
	LastSyncedAt string   `yaml:"last_synced_at,omitempty"`
}

// planMeta is the on-disk frontmatter shape for plan files.
type planMeta struct {
	Title          string `yaml:"title"`
	Type           string `yaml:"type"`
	Status         string `yaml:"status"`
	Date           string `yaml:"date,omitempty"`
	RemoteParentID string `yaml:"remote_parent_id,omitempty"`
	LastSyncedAt   string `yaml:"last_synced_at,omitempty"`
}

// splitFrontmatter separates the YAML block from the markdown body.
func splitFrontmatter(data []byte) (meta []byte, body string, err error) {
	content := string(data)
	if !strings.HasPrefix(content, frontmatterFence+"\n") {
		return nil, "", fmt.Errorf("no frontmatter block")
	}
	rest := content[len(frontmatterFence)+1:]
	end := strings.Index(rest, "\n"+frontmatterFence+"\n")
	if end < 0 {
		// Frontmatter may close at end of file with no trailing newline.
		if strings.HasSuffix(rest, "\n"+frontmatterFence) {
			return []byte(rest[:len(rest)-len(frontmatterFence)-1]), "", nil
		}
		return nil, "", fmt.Errorf("unterminated frontmatter block")
	}
	meta = []byte(rest[:end])
	body = rest[end+len(frontmatterFence)+2:]
	body = strings.TrimPrefix(body, "\n")
	return meta, body, nil
}

// DecodeTask parses a task file's contents into a validated TaskRecord.
// Files missing any of status, priority, or issue_id fail validation and
// are skipped by the loader, since task directories may hold unrelated
// markdown.
func DecodeTask(path string, data []byte) (*types.TaskRecord, error) {
	metaBytes, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	var meta taskMeta
	if err := yaml.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	record := &types.TaskRecord{
		Path:         path,
		Status:       types.Status(meta.Status),
		Priority:     types.Priority(meta.Priority),
		IssueID:      meta.IssueID,
		Tags:         meta.Tags,
		Dependencies: meta.Dependencies,
		RemoteID:     meta.RemoteID,
		Body:         body,
	}
	if meta.LastSyncedAt != "" {
		ts, err := time.Parse(time.RFC3339, meta.LastSyncedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing last_synced_at: %w", err)
		}
		record.LastSyncedAt = &ts
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	record.Title = ExtractTitle(body)
	if record.Title == "" {
		record.Title = titleFromSlug(path)
	}
	return record, nil
}

// EncodeTask serializes a TaskRecord back into frontmatter + body form.
func EncodeTask(record *types.TaskRecord) ([]byte, error) {
	meta := taskMeta{
		Status:       string(record.Status),
		Priority:     string(record.Priority),
		IssueID:      record.IssueID,
		Tags:         record.Tags,
		Dependencies: record.Dependencies,
		RemoteID:     record.RemoteID,
	}
	if record.LastSyncedAt != nil {
		meta.LastSyncedAt = record.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	return encode(meta, record.Body)
}

// DecodePlan parses a plan file's contents into a validated PlanRecord.
func DecodePlan(path string, data []byte) (*types.PlanRecord, error) {
	metaBytes, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	var meta planMeta
	if err := yaml.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	plan := &types.PlanRecord{
		Path:           path,
		Title:          meta.Title,
		Type:           meta.Type,
		Status:         types.PlanStatus(meta.Status),
		Date:           meta.Date,
		RemoteParentID: meta.RemoteParentID,
		Body:           body,
	}
	if meta.LastSyncedAt != "" {
		ts, err := time.Parse(time.RFC3339, meta.LastSyncedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing last_synced_at: %w", err)
		}
		plan.LastSyncedAt = &ts
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// EncodePlan serializes a PlanRecord back into frontmatter + body form.
func EncodePlan(plan *types.PlanRecord) ([]byte, error) {
	meta := planMeta{
		Title:          plan.Title,
		Type:           plan.Type,
		Status:         string(plan.Status),
		Date:           plan.Date,
		RemoteParentID: plan.RemoteParentID,
	}
	if plan.LastSyncedAt != nil {
		meta.LastSyncedAt = plan.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	return encode(meta, plan.Body)
}

func encode(meta interface{}, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterFence + "\n")
	out, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}
	buf.Write(out)
	buf.WriteString(frontmatterFence + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// ExtractTitle returns the text of the first heading in the body, or ""
// when the body has none.
func ExtractTitle(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	src := []byte(body)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok {
			continue
		}
		var sb strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				sb.Write(t.Segment.Value(src))
			}
		}
		return strings.TrimSpace(sb.String())
	}
	return ""
}

package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/mapping"
	"github.com/tasklinehq/taskline/internal/taskfile"
	"github.com/tasklinehq/taskline/internal/types"
)

// importMissing discovers remote issues not yet represented locally and
// imports each as a new task file. Sequence ids are assigned by scanning
// the current maximum and incrementing, including records imported
// earlier in the same pass. Import order is the order the remote list
// returns. Failures are per-item: one bad issue doesn't stop the scan.
func (e *Engine) importMissing(ctx context.Context, seen map[string]bool, records []*types.TaskRecord, dryRun bool, result *types.SyncResult) {
	issues, err := e.client.ListIssues(ctx, e.team.ID)
	if err != nil {
		result.AddError("import scan", err)
		return
	}

	for _, issue := range issues {
		if seen[issue.Identifier] {
			continue
		}
		record, err := e.importIssue(issue, records, dryRun)
		if err != nil {
			result.AddError(issue.Identifier, err)
			continue
		}
		seen[issue.Identifier] = true
		records = append(records, record)
		result.PulledCreated++
		e.progress(record.Path, "imported ← %s", issue.Identifier)
	}
}

// importIssue materializes one remote issue as a local task file.
func (e *Engine) importIssue(issue *linear.Issue, records []*types.TaskRecord, dryRun bool) (*types.TaskRecord, error) {
	status := mapping.RemoteStateToStatus(issue.State.Name, e.cfg.StatusMap)
	if status == types.StatusUnresolved {
		status = types.StatusPending
	}

	ts := e.now()
	record := &types.TaskRecord{
		Title:        issue.Title,
		Status:       status,
		Priority:     mapping.RemoteToPriority(issue.Priority, e.cfg.PriorityMap),
		IssueID:      taskfile.NextSequenceID(records),
		RemoteID:     issue.Identifier,
		LastSyncedAt: &ts,
		Body:         importBody(issue),
	}

	if dryRun {
		record.Path = taskfile.ComputeFilename(record.IssueID, record.Status, record.Priority, taskfile.Slugify(issue.Title))
		return record, nil
	}
	if err := e.store.CreateTask(record); err != nil {
		return nil, err
	}
	if err := e.store.Restamp(record.Path, ts); err != nil {
		return nil, err
	}
	return record, nil
}

// importBody builds the initial file body for an imported issue, seeding
// the Work Log with a note recording where it came from.
func importBody(issue *linear.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", issue.Title)
	if desc := strings.TrimSpace(issue.Description); desc != "" {
		sb.WriteString("\n" + desc + "\n")
	}
	note := fmt.Sprintf("- **%s**: Imported from %s", issue.UpdatedAt.UTC().Format("2006-01-02"), issue.Identifier)
	return taskfile.AppendWorkLog(sb.String(), note)
}

// ImportOne imports a single remote issue by its human identifier. Unlike
// the batch scan this fails fast: there is no rest-of-the-batch to
// protect.
func (e *Engine) ImportOne(ctx context.Context, identifier string) (*types.TaskRecord, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	records, err := e.store.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.RemoteID == identifier {
			return nil, fmt.Errorf("%s is already imported as %s", identifier, record.Path)
		}
	}
	plans, err := e.store.LoadPlans()
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		if plan.RemoteParentID == identifier {
			return nil, fmt.Errorf("%s is already linked to plan %s", identifier, plan.Path)
		}
	}

	issue, err := e.client.Issue(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", identifier, err)
	}
	return e.importIssue(issue, records, false)
}

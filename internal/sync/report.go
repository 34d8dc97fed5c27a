package sync

import (
	"context"

	"github.com/tasklinehq/taskline/internal/mapping"
	"github.com/tasklinehq/taskline/internal/types"
)

// RecordState classifies a record's sync relationship for the dashboard.
type RecordState string

const (
	StateInSync          RecordState = "in-sync"
	StatePushPending     RecordState = "push-pending"
	StatePullPending     RecordState = "pull-pending"
	StateConflictPending RecordState = "conflict-pending"
	StateUnlinked        RecordState = "unlinked"
	StateError           RecordState = "error"
)

// RecordStatus is one row of the read-only status report.
type RecordStatus struct {
	Path     string      `json:"path"`
	IssueID  string      `json:"issue_id"`
	RemoteID string      `json:"remote_id,omitempty"`
	State    RecordState `json:"state"`
	Detail   string      `json:"detail,omitempty"`
}

// Report answers "what would sync do" for every record without mutating
// anything: no remote writes, no file writes, no lastSyncedAt refresh. It
// uses the same timestamp comparison as the engine's branch step so the
// report and a subsequent pass cannot disagree.
func (e *Engine) Report(ctx context.Context) ([]RecordStatus, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	items, _, err := e.loadItems()
	if err != nil {
		return nil, err
	}

	statuses := make([]RecordStatus, 0, len(items))
	for _, it := range items {
		statuses = append(statuses, e.classify(ctx, it))
	}
	return statuses, nil
}

func (e *Engine) classify(ctx context.Context, it *item) RecordStatus {
	record := it.task
	row := RecordStatus{Path: record.Path, IssueID: record.IssueID, RemoteID: record.RemoteID}

	if !record.Linked() {
		row.State = StateUnlinked
		row.Detail = "never pushed"
		return row
	}

	issue, err := e.client.Issue(ctx, record.RemoteID)
	if err != nil {
		row.State = StateError
		row.Detail = err.Error()
		return row
	}
	mtime, err := e.store.Mtime(record.Path)
	if err != nil {
		row.State = StateError
		row.Detail = err.Error()
		return row
	}

	last := record.SyncedAt()
	fileChanged := record.LastSyncedAt == nil || mtime.After(last)
	remoteChanged := issue.UpdatedAt.After(last)

	// Timestamp drift alone doesn't make a record out of sync; check
	// whether the synced field set actually diverged.
	expectedStatus := mapping.RemoteStateToStatus(issue.State.Name, e.cfg.StatusMap)
	expectedPriority := mapping.RemoteToPriority(issue.Priority, e.cfg.PriorityMap)
	inSync := (expectedStatus == types.StatusUnresolved || expectedStatus == record.Status) &&
		expectedPriority == record.Priority

	switch {
	case fileChanged && remoteChanged:
		row.State = StateConflictPending
		if !mtime.Before(issue.UpdatedAt) {
			row.Detail = "file wins"
		} else {
			row.Detail = "remote wins"
		}
		if inSync {
			row.State = StateInSync
			row.Detail = "timestamps drifted, values match"
		}
	case fileChanged:
		row.State = StatePushPending
	case remoteChanged:
		row.State = StatePullPending
	default:
		row.State = StateInSync
	}
	return row
}

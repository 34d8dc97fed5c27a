package sync

import (
	"context"
	"fmt"
	"os"

	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/mapping"
	"github.com/tasklinehq/taskline/internal/taskfile"
	"github.com/tasklinehq/taskline/internal/types"
)

// Single-shot operations. These fail fast and loudly: unlike a batch
// pass, there is no rest-of-the-batch to protect.

// CreateFromFile push-creates one task file, optionally as a sub-issue of
// the remote issue named by parentIdentifier.
func (e *Engine) CreateFromFile(ctx context.Context, path, parentIdentifier string) (*types.TaskRecord, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	record, err := taskfile.DecodeTask(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid task file: %w", path, err)
	}
	if record.Linked() {
		return nil, fmt.Errorf("%s is already linked to %s", path, record.RemoteID)
	}

	var parentID string
	if parentIdentifier != "" {
		parent, err := e.client.Issue(ctx, parentIdentifier)
		if err != nil {
			return nil, fmt.Errorf("resolving parent %s: %w", parentIdentifier, err)
		}
		parentID = parent.ID
	}

	state, err := mapping.StatusToRemoteState(record.Status, e.states, e.cfg.StatusMap)
	if err != nil {
		return nil, err
	}
	issue, err := e.client.CreateIssue(ctx, linear.IssueCreate{
		TeamID:      e.team.ID,
		ProjectID:   e.cfg.ProjectID,
		Title:       record.Title,
		Description: record.Body,
		StateID:     state.ID,
		Priority:    mapping.PriorityToRemote(record.Priority, e.cfg.PriorityMap),
		ParentID:    parentID,
	})
	if err != nil {
		return nil, err
	}

	ts := e.now()
	record.RemoteID = issue.Identifier
	record.LastSyncedAt = &ts
	if err := e.store.WriteTask(record); err != nil {
		return nil, err
	}
	if err := e.store.Restamp(record.Path, ts); err != nil {
		return nil, err
	}
	return record, nil
}

// Cancel moves the remote issue to the cancelled state, optionally
// leaving a comment, and pulls the cancellation back into the matching
// local record (status transition plus rename) when one exists.
// Cancellation is a status value, never a record deletion.
func (e *Engine) Cancel(ctx context.Context, identifier, note string) error {
	if err := e.prepare(ctx); err != nil {
		return err
	}
	issue, err := e.client.Issue(ctx, identifier)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", identifier, err)
	}

	state, err := mapping.StatusToRemoteState(types.StatusCancelled, e.states, e.cfg.StatusMap)
	if err != nil {
		return err
	}
	if issue.State.ID != state.ID {
		if err := e.client.UpdateIssue(ctx, issue.ID, linear.IssueUpdate{StateID: &state.ID}); err != nil {
			return err
		}
	}
	if note != "" {
		if err := e.client.CreateComment(ctx, issue.ID, note); err != nil {
			return err
		}
	}

	records, err := e.store.LoadAll()
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.RemoteID != identifier {
			continue
		}
		it := &item{task: record}
		if err := e.applyLocalStatus(it, types.StatusCancelled, record.Priority, false); err != nil {
			return err
		}
		return e.touch(it, false)
	}
	return nil
}

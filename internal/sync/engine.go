// Package sync implements the bidirectional reconciliation engine between
// local task/plan files and the remote tracker.
//
// Truth is reconstructed on every pass from file contents/timestamps and a
// live remote query; there is no intermediate database. Each record is
// reconciled as an atomic unit: a failure on one record is recorded and
// the pass moves on.
package sync

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/tasklinehq/taskline/internal/config"
	"github.com/tasklinehq/taskline/internal/linear"
	"github.com/tasklinehq/taskline/internal/mapping"
	"github.com/tasklinehq/taskline/internal/taskfile"
	"github.com/tasklinehq/taskline/internal/types"
)

// Mode selects which directions a pass may move data in.
type Mode int

const (
	// ModeFull pushes, pulls, resolves conflicts, and imports.
	ModeFull Mode = iota
	// ModePush only moves local changes outward; nothing is pulled.
	ModePush
	// ModePull only moves remote changes inward, including comments and
	// new-item import; nothing is pushed or created remotely.
	ModePull
)

// Options configures one reconciliation pass.
type Options struct {
	Mode Mode

	// DryRun reports every action the pass would take and increments the
	// same counters, without performing file writes or remote mutations.
	// Reads still happen: the dry-run path shares the live path's
	// branching so preview and execution cannot drift.
	DryRun bool

	// File restricts the pass to a single task file (push-one).
	File string
}

// Engine orchestrates reconciliation passes. Construct one per
// invocation with a resolved Config; it holds no global state.
type Engine struct {
	store  *taskfile.Store
	client linear.Client
	cfg    *config.Config

	team   *linear.Team
	states []*linear.WorkflowState

	out io.Writer
	now func() time.Time
}

// New creates an engine. out receives per-record progress lines; pass
// io.Discard to silence them.
func New(store *taskfile.Store, client linear.Client, cfg *config.Config, out io.Writer) *Engine {
	return &Engine{
		store:  store,
		client: client,
		cfg:    cfg,
		out:    out,
		now:    time.Now,
	}
}

// item is one reconcilable unit: either a task record, or a plan record
// carried through its synthesized task-shaped view.
type item struct {
	task *types.TaskRecord
	plan *types.PlanRecord
}

// prepare resolves the team scope and fetches the workflow states, once
// per pass.
func (e *Engine) prepare(ctx context.Context) error {
	if e.team != nil {
		return nil
	}
	team, err := e.cfg.ResolveTeam(ctx, e.client)
	if err != nil {
		return err
	}
	states, err := e.client.WorkflowStates(ctx, team.ID)
	if err != nil {
		return fmt.Errorf("fetching workflow states: %w", err)
	}
	e.team = team
	e.states = states
	return nil
}

// loadItems loads tasks and plans into a single reconciliation list.
func (e *Engine) loadItems() ([]*item, []*types.TaskRecord, error) {
	records, err := e.store.LoadAll()
	if err != nil {
		return nil, nil, err
	}
	plans, err := e.store.LoadPlans()
	if err != nil {
		return nil, nil, err
	}

	items := make([]*item, 0, len(records)+len(plans))
	for _, record := range records {
		items = append(items, &item{task: record})
	}
	for _, plan := range plans {
		items = append(items, &item{task: plan.AsTask(), plan: plan})
	}
	return items, records, nil
}

// Run executes one reconciliation pass and returns the aggregate result.
// Per-record failures are collected in the result; only setup failures
// (team resolution, directory scan) return an error.
func (e *Engine) Run(ctx context.Context, opts Options) (*types.SyncResult, error) {
	if err := e.prepare(ctx); err != nil {
		return nil, err
	}
	items, records, err := e.loadItems()
	if err != nil {
		return nil, err
	}
	if opts.File != "" {
		items = filterByPath(items, opts.File)
		if len(items) == 0 {
			return nil, fmt.Errorf("%s is not a task file", opts.File)
		}
	}

	result := &types.SyncResult{}
	seen := make(map[string]bool)
	for _, it := range items {
		if err := e.syncOne(ctx, it, opts, result); err != nil {
			result.AddError(it.task.Path, err)
		}
		// Marked after reconciliation so a record push-created in this
		// pass is not re-imported by the discovery scan below.
		if it.task.Linked() {
			seen[it.task.RemoteID] = true
		}
	}

	if opts.Mode != ModePush && opts.File == "" {
		e.importMissing(ctx, seen, records, opts.DryRun, result)
	}
	return result, nil
}

func filterByPath(items []*item, path string) []*item {
	clean := filepath.Clean(path)
	for _, it := range items {
		if filepath.Clean(it.task.Path) == clean || filepath.Base(it.task.Path) == filepath.Base(clean) {
			return []*item{it}
		}
	}
	return nil
}

// syncOne reconciles a single record. The branch taken (push, pull,
// conflict, skip, create) is decided by comparing the file mtime and the
// remote updatedAt against lastSyncedAt.
func (e *Engine) syncOne(ctx context.Context, it *item, opts Options, result *types.SyncResult) error {
	record := it.task

	if !record.Linked() {
		if opts.Mode == ModePull {
			result.Skipped++
			return nil
		}
		return e.createRemote(ctx, it, opts.DryRun, result)
	}

	// Single fetch per record per pass; reused for the state diff and,
	// on the pull branch, for comment attribution.
	issue, err := e.client.Issue(ctx, record.RemoteID)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", record.RemoteID, err)
	}
	mtime, err := e.store.Mtime(record.Path)
	if err != nil {
		return err
	}

	last := record.SyncedAt()
	fileChanged := record.LastSyncedAt == nil || mtime.After(last)
	remoteChanged := issue.UpdatedAt.After(last)

	switch opts.Mode {
	case ModePush:
		remoteChanged = false
	case ModePull:
		fileChanged = false
	}

	switch {
	case fileChanged && remoteChanged:
		return e.resolveConflict(ctx, it, issue, mtime, opts.DryRun, result)
	case fileChanged:
		return e.pushRecord(ctx, it, issue, opts.DryRun, result)
	case remoteChanged:
		return e.pullRecord(ctx, it, issue, opts.DryRun, result)
	default:
		// Nothing moved, but lastSyncedAt still advances so the next pass
		// measures drift from now rather than a stale baseline.
		e.progress(record.Path, "in sync")
		result.Skipped++
		return e.touch(it, opts.DryRun)
	}
}

// touch refreshes lastSyncedAt and writes the record back.
func (e *Engine) touch(it *item, dryRun bool) error {
	if dryRun {
		return nil
	}
	ts := e.now()
	it.task.LastSyncedAt = &ts
	return e.writeBack(it)
}

// writeBack persists the record. Plans are written through their own
// field names; the synthesized task view is folded back first. The file's
// mtime is re-stamped to lastSyncedAt so the engine's own write doesn't
// read as a local edit on the next pass.
func (e *Engine) writeBack(it *item) error {
	if it.plan == nil {
		if err := e.store.WriteTask(it.task); err != nil {
			return err
		}
		return e.store.Restamp(it.task.Path, it.task.SyncedAt())
	}
	it.plan.Status = types.PlanStatusFor(it.task.Status)
	it.plan.RemoteParentID = it.task.RemoteID
	it.plan.LastSyncedAt = it.task.LastSyncedAt
	it.plan.Body = it.task.Body
	if err := e.store.WritePlan(it.plan); err != nil {
		return err
	}
	return e.store.Restamp(it.plan.Path, it.task.SyncedAt())
}

// applyLocalStatus moves the record to a new status/priority, renaming
// task files per the filename contract. Plans have no encoded filename,
// so only their metadata changes.
func (e *Engine) applyLocalStatus(it *item, status types.Status, priority types.Priority, dryRun bool) error {
	if dryRun {
		it.task.Status = status
		it.task.Priority = priority
		return nil
	}
	if it.plan == nil && (status != it.task.Status || priority != it.task.Priority) {
		if _, err := e.store.Rename(it.task, status, priority); err != nil {
			return err
		}
	}
	it.task.Status = status
	it.task.Priority = priority
	return nil
}

// remoteDiff computes the update that would make the remote issue match
// the local record. Empty when the two already agree on the synced field
// set (title, state, priority). The body is create-only: the Work Log
// accumulates remote comments, so pushing it back would echo them into
// the remote description.
func (e *Engine) remoteDiff(record *types.TaskRecord, issue *linear.Issue) (linear.IssueUpdate, error) {
	var update linear.IssueUpdate

	state, err := mapping.StatusToRemoteState(record.Status, e.states, e.cfg.StatusMap)
	if err != nil {
		return update, err
	}
	if state.ID != issue.State.ID {
		update.StateID = &state.ID
	}
	if priority := mapping.PriorityToRemote(record.Priority, e.cfg.PriorityMap); priority != issue.Priority {
		update.Priority = &priority
	}
	if record.Title != "" && record.Title != issue.Title {
		update.Title = &record.Title
	}
	return update, nil
}

// pushRecord moves local changes outward. No-op updates are skipped, but
// lastSyncedAt refreshes regardless: the pass still touched this record.
func (e *Engine) pushRecord(ctx context.Context, it *item, issue *linear.Issue, dryRun bool, result *types.SyncResult) error {
	record := it.task
	update, err := e.remoteDiff(record, issue)
	if err != nil {
		return err
	}

	if !update.IsEmpty() {
		if !dryRun {
			if err := e.client.UpdateIssue(ctx, issue.ID, update); err != nil {
				return err
			}
		}
		result.PushedUpdated++
		e.progress(record.Path, "pushed → %s", record.RemoteID)
	} else {
		result.Skipped++
		e.progress(record.Path, "in sync")
	}
	return e.touch(it, dryRun)
}

// pullRecord moves remote changes inward: state/priority translation,
// rename, and Work Log comment propagation.
func (e *Engine) pullRecord(ctx context.Context, it *item, issue *linear.Issue, dryRun bool, result *types.SyncResult) error {
	record := it.task

	status := mapping.RemoteStateToStatus(issue.State.Name, e.cfg.StatusMap)
	if status == types.StatusUnresolved {
		// Unrecognized remote state: do not change the local status.
		status = record.Status
	}
	priority := mapping.RemoteToPriority(issue.Priority, e.cfg.PriorityMap)

	changed := status != record.Status || priority != record.Priority
	if changed {
		if err := e.applyLocalStatus(it, status, priority, dryRun); err != nil {
			return err
		}
		result.PulledUpdated++
		e.progress(record.Path, "pulled ← %s", record.RemoteID)
	}

	pulled, err := e.pullComments(ctx, it, dryRun)
	if err != nil {
		return err
	}
	result.PulledComments += pulled
	if !changed && pulled == 0 {
		e.progress(record.Path, "in sync")
	}
	return e.touch(it, dryRun)
}

// pullComments appends comments created strictly after lastSyncedAt to
// the record's Work Log, oldest first. Strict-greater filtering keeps the
// operation idempotent as long as lastSyncedAt advances, which touch
// guarantees on every branch.
func (e *Engine) pullComments(ctx context.Context, it *item, dryRun bool) (int, error) {
	record := it.task
	comments, err := e.client.Comments(ctx, record.RemoteID)
	if err != nil {
		return 0, fmt.Errorf("fetching comments for %s: %w", record.RemoteID, err)
	}

	last := record.SyncedAt()
	fresh := comments[:0:0]
	for _, comment := range comments {
		if comment.CreatedAt.After(last) {
			fresh = append(fresh, comment)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
	})

	if dryRun {
		return len(fresh), nil
	}
	for _, comment := range fresh {
		entry := taskfile.WorkLogEntry(comment.CreatedAt, comment.Author, comment.Body)
		record.Body = taskfile.AppendWorkLog(record.Body, entry)
	}
	return len(fresh), nil
}

// resolveConflict handles the both-sides-changed case with whole-record
// last-write-wins: the strictly later timestamp takes the record, and an
// exact tie goes to the file so the outcome is deterministic.
func (e *Engine) resolveConflict(ctx context.Context, it *item, issue *linear.Issue, mtime time.Time, dryRun bool, result *types.SyncResult) error {
	record := it.task
	fileWins := !mtime.Before(issue.UpdatedAt)

	remoteStatus := mapping.RemoteStateToStatus(issue.State.Name, e.cfg.StatusMap)
	if remoteStatus != types.StatusUnresolved && remoteStatus != record.Status {
		winner := types.WinnerRemote
		reason := fmt.Sprintf("remote updated %s after file modified %s",
			issue.UpdatedAt.UTC().Format(time.RFC3339), mtime.UTC().Format(time.RFC3339))
		if fileWins {
			winner = types.WinnerFile
			reason = fmt.Sprintf("file modified %s after remote updated %s",
				mtime.UTC().Format(time.RFC3339), issue.UpdatedAt.UTC().Format(time.RFC3339))
		}
		result.Conflicts = append(result.Conflicts, types.ConflictEntry{
			Path:        record.Path,
			Field:       "status",
			FileValue:   string(record.Status),
			RemoteValue: string(remoteStatus),
			Winner:      winner,
			Reason:      reason,
		})
	}

	e.progress(record.Path, "conflict (%s wins)", map[bool]string{true: "file", false: "remote"}[fileWins])
	if fileWins {
		return e.pushRecord(ctx, it, issue, dryRun, result)
	}
	return e.pullRecord(ctx, it, issue, dryRun, result)
}

// createRemote push-creates an unlinked record. Create is not idempotent
// on the remote side, so the remote call is the last fallible step before
// the link is persisted locally.
func (e *Engine) createRemote(ctx context.Context, it *item, dryRun bool, result *types.SyncResult) error {
	record := it.task

	state, err := mapping.StatusToRemoteState(record.Status, e.states, e.cfg.StatusMap)
	if err != nil {
		return err
	}
	input := linear.IssueCreate{
		TeamID:      e.team.ID,
		ProjectID:   e.cfg.ProjectID,
		Title:       record.Title,
		Description: record.Body,
		StateID:     state.ID,
		Priority:    mapping.PriorityToRemote(record.Priority, e.cfg.PriorityMap),
	}

	result.PushedCreated++
	if dryRun {
		e.progress(record.Path, "would create")
		return nil
	}

	issue, err := e.client.CreateIssue(ctx, input)
	if err != nil {
		result.PushedCreated--
		return fmt.Errorf("creating issue for %s: %w", record.Path, err)
	}

	ts := e.now()
	record.RemoteID = issue.Identifier
	record.LastSyncedAt = &ts
	e.progress(record.Path, "created → %s", issue.Identifier)
	return e.writeBack(it)
}

func (e *Engine) progress(path, format string, args ...interface{}) {
	if e.out == nil {
		return
	}
	fmt.Fprintf(e.out, "  %s: %s\n", path, fmt.Sprintf(format, args...))
}

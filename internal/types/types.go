package types

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a local task record
type Status string

const (
	StatusPending    Status = "pending"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"

	// StatusUnresolved is returned by the inverse state mapping when a
	// remote workflow state has no local equivalent. Callers must treat it
	// as "leave the local status alone"; it is never written to disk.
	StatusUnresolved Status = ""
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReady, StatusInProgress, StatusComplete, StatusCancelled:
		return true
	}
	return false
}

// AllStatuses returns every valid status, in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusReady, StatusInProgress, StatusComplete, StatusCancelled}
}

// Priority represents the urgency tier of a task record
type Priority string

const (
	PriorityP1 Priority = "p1"
	PriorityP2 Priority = "p2"
	PriorityP3 Priority = "p3"
)

// IsValid checks if the priority value is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// AllPriorities returns every valid priority, most urgent first.
func AllPriorities() []Priority {
	return []Priority{PriorityP1, PriorityP2, PriorityP3}
}

// TaskRecord is a single task file plus its parsed metadata.
//
// RemoteID and LastSyncedAt are set together by the sync engine: a record
// with a remote link always carries the timestamp of its last successful
// reconciliation. A record with neither has never been pushed.
type TaskRecord struct {
	Path         string     `json:"path"`
	Title        string     `json:"title"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	IssueID      string     `json:"issue_id"` // zero-padded local sequence id
	Tags         []string   `json:"tags,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
	RemoteID     string     `json:"remote_id,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	Body         string     `json:"-"`
}

// Validate checks if the record has valid field values
func (r *TaskRecord) Validate() error {
	if r.IssueID == "" {
		return fmt.Errorf("issue_id is required")
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", r.Status)
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %q", r.Priority)
	}
	return nil
}

// Linked reports whether the record has ever been pushed to the remote.
func (r *TaskRecord) Linked() bool {
	return r.RemoteID != ""
}

// SyncedAt returns the last-synced timestamp, or the zero time if the
// record has never been reconciled.
func (r *TaskRecord) SyncedAt() time.Time {
	if r.LastSyncedAt == nil {
		return time.Time{}
	}
	return *r.LastSyncedAt
}

// PlanStatus represents the lifecycle state of a planning document
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

// IsValid checks if the plan status value is valid
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanDraft, PlanActive, PlanCompleted:
		return true
	}
	return false
}

// ToStatus translates a plan status into the task status space.
func (s PlanStatus) ToStatus() Status {
	switch s {
	case PlanActive:
		return StatusInProgress
	case PlanCompleted:
		return StatusComplete
	default:
		return StatusPending
	}
}

// PlanStatusFor is the inverse of ToStatus. Task statuses with no plan
// equivalent (ready, cancelled) collapse into the nearest plan state.
func PlanStatusFor(s Status) PlanStatus {
	switch s {
	case StatusInProgress, StatusReady:
		return PlanActive
	case StatusComplete, StatusCancelled:
		return PlanCompleted
	default:
		return PlanDraft
	}
}

// PlanRecord is a higher-level planning document. Plans are synthesized
// into a TaskRecord-shaped view for reconciliation and written back
// through their own field names.
type PlanRecord struct {
	Path           string     `json:"path"`
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	Status         PlanStatus `json:"status"`
	Date           string     `json:"date,omitempty"`
	RemoteParentID string     `json:"remote_parent_id,omitempty"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	Body           string     `json:"-"`
}

// Validate checks if the plan has valid field values
func (p *PlanRecord) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", p.Status)
	}
	return nil
}

// AsTask synthesizes the TaskRecord-shaped view of a plan used by the
// sync engine. Priority defaults to p3 and the sequence id is synthetic;
// plans never participate in filename numbering.
func (p *PlanRecord) AsTask() *TaskRecord {
	return &TaskRecord{
		Path:         p.Path,
		Title:        p.Title,
		Status:       p.Status.ToStatus(),
		Priority:     PriorityP3,
		IssueID:      "plan",
		RemoteID:     p.RemoteParentID,
		LastSyncedAt: p.LastSyncedAt,
		Body:         p.Body,
	}
}

// ConflictWinner identifies which side of a conflict prevailed
type ConflictWinner string

const (
	WinnerFile   ConflictWinner = "file"
	WinnerRemote ConflictWinner = "remote"
)

// ConflictEntry records one conflicting field detected during a pass.
// Entries are emitted only for fields whose values actually differ;
// timestamp-only drift is not a conflict.
type ConflictEntry struct {
	Path        string         `json:"path"`
	Field       string         `json:"field"`
	FileValue   string         `json:"file_value"`
	RemoteValue string         `json:"remote_value"`
	Winner      ConflictWinner `json:"winner"`
	Reason      string         `json:"reason"`
}

// SyncResult aggregates counters across a whole reconciliation pass.
// A single record's failure lands in Errors; the rest of the result is
// never discarded.
type SyncResult struct {
	PushedCreated  int             `json:"pushed_created"`
	PushedUpdated  int             `json:"pushed_updated"`
	PulledUpdated  int             `json:"pulled_updated"`
	PulledCreated  int             `json:"pulled_created"`
	PulledComments int             `json:"pulled_comments"`
	Skipped        int             `json:"skipped"`
	Conflicts      []ConflictEntry `json:"conflicts,omitempty"`
	Errors         []string        `json:"errors,omitempty"`
}

// AddError records a per-record failure with the filename for context.
func (r *SyncResult) AddError(path string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", path, err))
}

// Changed reports whether the pass performed (or, in dry-run, would
// perform) any mutation on either side.
func (r *SyncResult) Changed() bool {
	return r.PushedCreated+r.PushedUpdated+r.PulledUpdated+r.PulledCreated+r.PulledComments > 0
}

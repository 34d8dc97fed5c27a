// Package linear is a thin client for the Linear GraphQL API.
//
// It exposes only the operations the sync engine needs: reads are
// idempotent, creates are not (a duplicate create call mints a duplicate
// remote issue), so the engine is responsible for calling create at most
// once per record.
package linear

import (
	"context"
	"fmt"
	"time"
)

// WorkflowState is one state in a team's workflow (e.g. "Todo", "Done").
type WorkflowState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Team identifies a Linear team. Key is the identifier prefix ("ENG" in
// "ENG-42").
type Team struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Comment is a single issue comment, ordered by creation time.
type Comment struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Issue is the remote representation of a work item.
type Issue struct {
	ID          string        `json:"id"`         // opaque UUID
	Identifier  string        `json:"identifier"` // human-readable, e.g. "ENG-42"
	Title       string        `json:"title"`
	Description string        `json:"description"`
	State       WorkflowState `json:"state"`
	Priority    int           `json:"priority"` // smaller = more urgent; 0 = unset
	ParentID    string        `json:"parentId,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// IssueCreate is the input to CreateIssue. ID may be left empty; the
// client generates one so a transport-level retry cannot mint two issues.
type IssueCreate struct {
	ID          string
	TeamID      string
	ProjectID   string
	Title       string
	Description string
	StateID     string
	Priority    int
	ParentID    string
}

// IssueUpdate carries only the fields to change; nil means "leave as is".
type IssueUpdate struct {
	Title       *string
	Description *string
	StateID     *string
	Priority    *int
}

// IsEmpty reports whether the update would be a no-op write.
func (u IssueUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.StateID == nil && u.Priority == nil
}

// Client is the remote issue-tracker surface the sync engine depends on.
type Client interface {
	// Issue fetches one issue by its opaque id or human identifier.
	Issue(ctx context.Context, id string) (*Issue, error)

	// ListIssues returns all issues in the team's scope, in the order the
	// service returns them.
	ListIssues(ctx context.Context, teamID string) ([]*Issue, error)

	// CreateIssue creates a new issue and returns it with its assigned
	// identifier. Not idempotent.
	CreateIssue(ctx context.Context, input IssueCreate) (*Issue, error)

	// UpdateIssue applies the non-nil fields of input to the issue.
	UpdateIssue(ctx context.Context, id string, input IssueUpdate) error

	// Comments returns the issue's comments ordered by creation time.
	Comments(ctx context.Context, issueID string) ([]*Comment, error)

	// CreateComment appends a comment to the issue.
	CreateComment(ctx context.Context, issueID, body string) error

	// Teams lists the teams visible to the credential.
	Teams(ctx context.Context) ([]*Team, error)

	// WorkflowStates lists the workflow states configured for a team.
	WorkflowStates(ctx context.Context, teamID string) ([]*WorkflowState, error)
}

// APIError is returned for any HTTP or GraphQL-level failure.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("linear api error (status %d): %s", e.Status, e.Messages[0])
	}
	return fmt.Sprintf("linear api error (status %d)", e.Status)
}

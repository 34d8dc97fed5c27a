package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the production Linear GraphQL endpoint.
const DefaultEndpoint = "https://api.linear.app/graphql"

// Linear allows ~1500 requests/hour per key. A sequential sync pass is
// nowhere near that, but a large import scan can burst, so the client
// paces itself rather than relying on 429 handling.
const requestsPerSecond = 5

// GraphQLClient implements Client against the Linear GraphQL API.
type GraphQLClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a client authenticated with the given API key.
func NewClient(apiKey string) *GraphQLClient {
	return NewClientWithEndpoint(apiKey, DefaultEndpoint)
}

// NewClientWithEndpoint creates a client against a non-default endpoint.
// Tests point this at an httptest server.
func NewClientWithEndpoint(apiKey, endpoint string) *GraphQLClient {
	return &GraphQLClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

// do executes one GraphQL request and decodes the "data" object into out.
func (c *GraphQLClient) do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling linear: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Errors []gqlError `json:"errors"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			for _, e := range envelope.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		return apiErr
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		apiErr := &APIError{Status: resp.StatusCode}
		for _, e := range envelope.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding data: %w", err)
		}
	}
	return nil
}

const issueFields = `
	id
	identifier
	title
	description
	priority
	updatedAt
	state { id name type }
	parent { id }`

// wireIssue matches the GraphQL issue shape; parent arrives as a nested
// object rather than a bare id.
type wireIssue struct {
	ID          string        `json:"id"`
	Identifier  string        `json:"identifier"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    int           `json:"priority"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	State       WorkflowState `json:"state"`
	Parent      *struct {
		ID string `json:"id"`
	} `json:"parent"`
}

func (w *wireIssue) toIssue() *Issue {
	issue := &Issue{
		ID:          w.ID,
		Identifier:  w.Identifier,
		Title:       w.Title,
		Description: w.Description,
		Priority:    w.Priority,
		UpdatedAt:   w.UpdatedAt,
		State:       w.State,
	}
	if w.Parent != nil {
		issue.ParentID = w.Parent.ID
	}
	return issue
}

// Issue fetches one issue. Linear's issue(id:) resolver accepts either the
// opaque UUID or the human identifier, so both callers share this path.
func (c *GraphQLClient) Issue(ctx context.Context, id string) (*Issue, error) {
	query := fmt.Sprintf(`query($id: String!) { issue(id: $id) {%s} }`, issueFields)
	var data struct {
		Issue *wireIssue `json:"issue"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, &APIError{Status: http.StatusNotFound, Messages: []string{fmt.Sprintf("issue %s not found", id)}}
	}
	return data.Issue.toIssue(), nil
}

// ListIssues returns every issue in the team's scope. Pagination follows
// the cursor until hasNextPage is false.
func (c *GraphQLClient) ListIssues(ctx context.Context, teamID string) ([]*Issue, error) {
	query := fmt.Sprintf(`query($teamId: ID!, $after: String) {
		issues(filter: { team: { id: { eq: $teamId } } }, first: 100, after: $after) {
			nodes {%s}
			pageInfo { hasNextPage endCursor }
		}
	}`, issueFields)

	var issues []*Issue
	var after interface{}
	for {
		var data struct {
			Issues struct {
				Nodes    []*wireIssue `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"issues"`
		}
		vars := map[string]interface{}{"teamId": teamID}
		if after != nil {
			vars["after"] = after
		}
		if err := c.do(ctx, query, vars, &data); err != nil {
			return nil, err
		}
		for _, node := range data.Issues.Nodes {
			issues = append(issues, node.toIssue())
		}
		if !data.Issues.PageInfo.HasNextPage {
			return issues, nil
		}
		after = data.Issues.PageInfo.EndCursor
	}
}

// CreateIssue creates an issue. The id is generated client-side when the
// caller leaves it empty.
func (c *GraphQLClient) CreateIssue(ctx context.Context, input IssueCreate) (*Issue, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	query := fmt.Sprintf(`mutation($input: IssueCreateInput!) {
		issueCreate(input: $input) {
			success
			issue {%s}
		}
	}`, issueFields)

	fields := map[string]interface{}{
		"id":     input.ID,
		"teamId": input.TeamID,
		"title":  input.Title,
	}
	if input.Description != "" {
		fields["description"] = input.Description
	}
	if input.StateID != "" {
		fields["stateId"] = input.StateID
	}
	if input.Priority > 0 {
		fields["priority"] = input.Priority
	}
	if input.ParentID != "" {
		fields["parentId"] = input.ParentID
	}
	if input.ProjectID != "" {
		fields["projectId"] = input.ProjectID
	}

	var data struct {
		IssueCreate struct {
			Success bool       `json:"success"`
			Issue   *wireIssue `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"input": fields}, &data); err != nil {
		return nil, err
	}
	if !data.IssueCreate.Success || data.IssueCreate.Issue == nil {
		return nil, fmt.Errorf("issue create reported failure for %q", input.Title)
	}
	return data.IssueCreate.Issue.toIssue(), nil
}

// UpdateIssue applies the non-nil fields of input.
func (c *GraphQLClient) UpdateIssue(ctx context.Context, id string, input IssueUpdate) error {
	if input.IsEmpty() {
		return nil
	}
	query := `mutation($id: String!, $input: IssueUpdateInput!) {
		issueUpdate(id: $id, input: $input) { success }
	}`

	fields := map[string]interface{}{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.StateID != nil {
		fields["stateId"] = *input.StateID
	}
	if input.Priority != nil {
		fields["priority"] = *input.Priority
	}

	var data struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"id": id, "input": fields}, &data); err != nil {
		return err
	}
	if !data.IssueUpdate.Success {
		return fmt.Errorf("issue update reported failure for %s", id)
	}
	return nil
}

// Comments returns an issue's comments in ascending creation order.
func (c *GraphQLClient) Comments(ctx context.Context, issueID string) ([]*Comment, error) {
	query := `query($id: String!) {
		issue(id: $id) {
			comments {
				nodes {
					id
					body
					createdAt
					user { name displayName }
				}
			}
		}
	}`
	var data struct {
		Issue *struct {
			Comments struct {
				Nodes []struct {
					ID        string    `json:"id"`
					Body      string    `json:"body"`
					CreatedAt time.Time `json:"createdAt"`
					User      *struct {
						Name        string `json:"name"`
						DisplayName string `json:"displayName"`
					} `json:"user"`
				} `json:"nodes"`
			} `json:"comments"`
		} `json:"issue"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"id": issueID}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, &APIError{Status: http.StatusNotFound, Messages: []string{fmt.Sprintf("issue %s not found", issueID)}}
	}
	comments := make([]*Comment, 0, len(data.Issue.Comments.Nodes))
	for _, node := range data.Issue.Comments.Nodes {
		comment := &Comment{ID: node.ID, Body: node.Body, CreatedAt: node.CreatedAt}
		if node.User != nil {
			comment.Author = node.User.DisplayName
			if comment.Author == "" {
				comment.Author = node.User.Name
			}
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// CreateComment appends a comment to the issue.
func (c *GraphQLClient) CreateComment(ctx context.Context, issueID, body string) error {
	query := `mutation($input: CommentCreateInput!) {
		commentCreate(input: $input) { success }
	}`
	var data struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}
	vars := map[string]interface{}{"input": map[string]interface{}{"issueId": issueID, "body": body}}
	if err := c.do(ctx, query, vars, &data); err != nil {
		return err
	}
	if !data.CommentCreate.Success {
		return fmt.Errorf("comment create reported failure for %s", issueID)
	}
	return nil
}

// Teams lists the teams visible to the credential.
func (c *GraphQLClient) Teams(ctx context.Context) ([]*Team, error) {
	query := `query { teams { nodes { id key name } } }`
	var data struct {
		Teams struct {
			Nodes []*Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.do(ctx, query, nil, &data); err != nil {
		return nil, err
	}
	return data.Teams.Nodes, nil
}

// WorkflowStates lists the workflow states configured for a team.
func (c *GraphQLClient) WorkflowStates(ctx context.Context, teamID string) ([]*WorkflowState, error) {
	query := `query($teamId: String!) {
		team(id: $teamId) {
			states { nodes { id name type } }
		}
	}`
	var data struct {
		Team *struct {
			States struct {
				Nodes []*WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}
	if err := c.do(ctx, query, map[string]interface{}{"teamId": teamID}, &data); err != nil {
		return nil, err
	}
	if data.Team == nil {
		return nil, &APIError{Status: http.StatusNotFound, Messages: []string{fmt.Sprintf("team %s not found", teamID)}}
	}
	return data.Team.States.Nodes, nil
}

// Package jiraclient fetches sprint data from the Jira Agile REST API.
package jiraclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// TokenEnvVar is the environment variable holding the Jira API token.
// Tokens never travel through flags or config files.
const TokenEnvVar = "SPRINTLENS_JIRA_TOKEN"

const (
	agileAPIPrefix = "/rest/agile/1.0"
	pageSize       = 100
	jiraTimeFormat = "2006-01-02T15:04:05.000-0700"
)

// Client implements the IssueClient interface against a Jira instance
// using basic auth (email + API token).
type Client struct {
	baseURL          string
	user             string
	token            string
	storyPointFields []string
	httpClient       *http.Client
}

var _ contract.IssueClient = &Client{} // Compile-time check

// NewClient creates a Jira client from the resolved configuration.
// The API token is read from the environment.
func NewClient(cfg *contract.Config) *Client {
	return &Client{
		baseURL:          cfg.JiraBaseURL,
		user:             cfg.JiraUser,
		token:            os.Getenv(TokenEnvVar),
		storyPointFields: cfg.StoryPointFields,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
	}
}

// SelectClient picks the issue source for a run: a file-backed client when
// an input file is configured, the live Jira API otherwise.
func SelectClient(cfg *contract.Config) contract.IssueClient {
	if cfg.InputFile != "" {
		return NewFileClient(cfg.InputFile)
	}
	return NewClient(cfg)
}

// GetSprint implements the contract.IssueClient interface.
func (c *Client) GetSprint(ctx context.Context, sprintID int) (schema.SprintInfo, error) {
	endpoint := fmt.Sprintf("%s/sprint/%d", agileAPIPrefix, sprintID)
	body, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return schema.SprintInfo{}, err
	}

	var raw rawSprint
	if err := json.Unmarshal(body, &raw); err != nil {
		return schema.SprintInfo{}, fmt.Errorf("failed to decode sprint %d: %w", sprintID, err)
	}
	return raw.toSprintInfo(), nil
}

// FetchSprintIssues implements the contract.IssueClient interface.
// Results are paginated by the API; all pages are drained before returning.
func (c *Client) FetchSprintIssues(ctx context.Context, sprintID int) ([]schema.Issue, error) {
	endpoint := fmt.Sprintf("%s/sprint/%d/issue", agileAPIPrefix, sprintID)
	issues := []schema.Issue{}

	startAt := 0
	for {
		query := url.Values{}
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(pageSize))

		body, err := c.get(ctx, endpoint, query)
		if err != nil {
			return nil, err
		}

		var page rawIssuePage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode issue page for sprint %d: %w", sprintID, err)
		}

		for _, raw := range page.Issues {
			issues = append(issues, raw.toIssue(c.storyPointFields))
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	return issues, nil
}

// ListBoardSprints implements the contract.IssueClient interface.
func (c *Client) ListBoardSprints(ctx context.Context, boardID int) ([]schema.SprintInfo, error) {
	endpoint := fmt.Sprintf("%s/board/%d/sprint", agileAPIPrefix, boardID)
	sprints := []schema.SprintInfo{}

	startAt := 0
	for {
		query := url.Values{}
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(pageSize))

		body, err := c.get(ctx, endpoint, query)
		if err != nil {
			return nil, err
		}

		var page rawSprintPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode sprint page for board %d: %w", boardID, err)
		}

		for _, raw := range page.Values {
			sprints = append(sprints, raw.toSprintInfo())
		}

		startAt += len(page.Values)
		if page.IsLast || len(page.Values) == 0 {
			break
		}
	}

	return sprints, nil
}

// get performs an authenticated GET against the Jira instance and returns
// the response body. Non-2xx statuses become errors carrying the status code.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.user != "" || c.token != "" {
		req.SetBasicAuth(c.user, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("jira returned status %d for %s", resp.StatusCode, endpoint)
	}
	return body, nil
}

// --- Wire Types ---

type rawSprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (r rawSprint) toSprintInfo() schema.SprintInfo {
	return schema.SprintInfo{
		ID:        r.ID,
		Name:      r.Name,
		State:     r.State,
		StartDate: parseJiraTime(r.StartDate),
		EndDate:   parseJiraTime(r.EndDate),
	}
}

type rawSprintPage struct {
	Values []rawSprint `json:"values"`
	IsLast bool        `json:"isLast"`
}

type rawIssuePage struct {
	Issues []rawIssue `json:"issues"`
	Total  int        `json:"total"`
}

type rawIssue struct {
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
}

type rawIssueFields struct {
	Summary   string `json:"summary"`
	IssueType struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
	Assignee *struct {
		DisplayName string `json:"displayName"`
	} `json:"assignee"`
	Components []struct {
		Name string `json:"name"`
	} `json:"components"`
	Created        string `json:"created"`
	ResolutionDate string `json:"resolutiondate"`
}

// toIssue flattens the nested Jira payload into the analysis model.
// Story points live in an instance-specific custom field, so the configured
// candidates are probed in order and the first numeric value wins.
func (r rawIssue) toIssue(storyPointFields []string) schema.Issue {
	var fields rawIssueFields
	_ = json.Unmarshal(r.Fields, &fields)

	issue := schema.Issue{
		Key:        r.Key,
		Summary:    fields.Summary,
		ItemType:   fields.IssueType.Name,
		Status:     fields.Status.Name,
		CreatedAt:  parseJiraTime(fields.Created),
		ResolvedAt: parseJiraTime(fields.ResolutionDate),
	}
	if fields.Assignee != nil {
		issue.Assignee = fields.Assignee.DisplayName
	}
	if len(fields.Components) > 0 {
		issue.Component = fields.Components[0].Name
	}

	var custom map[string]json.RawMessage
	if err := json.Unmarshal(r.Fields, &custom); err == nil {
		for _, field := range storyPointFields {
			raw, ok := custom[field]
			if !ok {
				continue
			}
			var points float64
			if err := json.Unmarshal(raw, &points); err == nil && points > 0 {
				issue.StoryPoints = points
				break
			}
		}
	}

	return issue
}

// parseJiraTime parses a Jira timestamp, falling back to RFC 3339.
// Empty or unparseable values come back nil.
func parseJiraTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{jiraTimeFormat, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

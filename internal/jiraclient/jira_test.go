package jiraclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcandido/sprintlens/internal/contract"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:          baseURL,
		user:             "dev@example.com",
		token:            "secret",
		storyPointFields: []string{"customfield_10016", "customfield_10026"},
		httpClient:       http.DefaultClient,
	}
}

func TestGetCapturesAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		fmt.Fprint(w, `{"id": 44, "name": "Sprint 44", "state": "closed"}`)
	}))
	defer server.Close()

	sprint, err := testClient(server.URL).GetSprint(context.Background(), 44)
	require.NoError(t, err)

	assert.Equal(t, "dev@example.com", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, 44, sprint.ID)
	assert.Equal(t, "Sprint 44", sprint.Name)
	assert.Equal(t, "closed", sprint.State)
}

func TestGetSprintParsesDates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/agile/1.0/sprint/44", r.URL.Path)
		fmt.Fprint(w, `{
			"id": 44,
			"name": "Sprint 44",
			"state": "closed",
			"startDate": "2025-06-02T09:00:00.000-0300",
			"endDate": "2025-06-16T17:00:00.000-0300"
		}`)
	}))
	defer server.Close()

	sprint, err := testClient(server.URL).GetSprint(context.Background(), 44)
	require.NoError(t, err)

	require.NotNil(t, sprint.StartDate)
	require.NotNil(t, sprint.EndDate)
	assert.Equal(t, 2, sprint.StartDate.Day())
	assert.Equal(t, 16, sprint.EndDate.Day())
}

func TestGetSprintErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetSprint(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchSprintIssues(t *testing.T) {
	t.Run("flattens nested payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/agile/1.0/sprint/44/issue", r.URL.Path)
			fmt.Fprint(w, `{
				"total": 1,
				"issues": [{
					"key": "PROJ-1",
					"fields": {
						"summary": "Checkout flow",
						"issuetype": {"name": "História"},
						"status": {"name": "Concluído"},
						"assignee": {"displayName": "Ana Silva"},
						"components": [{"name": "Payments"}],
						"created": "2025-06-02T09:00:00.000-0300",
						"resolutiondate": "2025-06-05T15:00:00.000-0300",
						"customfield_10016": 5.0
					}
				}]
			}`)
		}))
		defer server.Close()

		issues, err := testClient(server.URL).FetchSprintIssues(context.Background(), 44)
		require.NoError(t, err)
		require.Len(t, issues, 1)

		issue := issues[0]
		assert.Equal(t, "PROJ-1", issue.Key)
		assert.Equal(t, "História", issue.ItemType)
		assert.Equal(t, "Concluído", issue.Status)
		assert.Equal(t, "Ana Silva", issue.Assignee)
		assert.Equal(t, "Payments", issue.Component)
		assert.Equal(t, 5.0, issue.StoryPoints)
		assert.True(t, issue.Resolved())
	})

	t.Run("probes story point fields in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"total": 1,
				"issues": [{
					"key": "PROJ-2",
					"fields": {
						"issuetype": {"name": "Story"},
						"status": {"name": "To Do"},
						"customfield_10016": null,
						"customfield_10026": 8
					}
				}]
			}`)
		}))
		defer server.Close()

		issues, err := testClient(server.URL).FetchSprintIssues(context.Background(), 44)
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, 8.0, issues[0].StoryPoints)
	})

	t.Run("missing optional fields stay zero", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"total": 1,
				"issues": [{
					"key": "PROJ-3",
					"fields": {
						"issuetype": {"name": "Bug"},
						"status": {"name": "To Do"},
						"assignee": null,
						"resolutiondate": null
					}
				}]
			}`)
		}))
		defer server.Close()

		issues, err := testClient(server.URL).FetchSprintIssues(context.Background(), 44)
		require.NoError(t, err)
		require.Len(t, issues, 1)

		issue := issues[0]
		assert.Empty(t, issue.Assignee)
		assert.Empty(t, issue.Component)
		assert.Zero(t, issue.StoryPoints)
		assert.Nil(t, issue.CreatedAt)
		assert.Nil(t, issue.ResolvedAt)
	})

	t.Run("drains all pages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
			fmt.Fprintf(w, `{
				"total": 2,
				"issues": [{
					"key": "PROJ-%d",
					"fields": {"issuetype": {"name": "Story"}, "status": {"name": "To Do"}}
				}]
			}`, startAt+1)
		}))
		defer server.Close()

		issues, err := testClient(server.URL).FetchSprintIssues(context.Background(), 44)
		require.NoError(t, err)
		require.Len(t, issues, 2)
		assert.Equal(t, "PROJ-1", issues[0].Key)
		assert.Equal(t, "PROJ-2", issues[1].Key)
	})
}

func TestListBoardSprints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/agile/1.0/board/7/sprint", r.URL.Path)
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		fmt.Fprintf(w, `{
			"isLast": %t,
			"values": [{"id": %d, "name": "Sprint %d", "state": "closed"}]
		}`, startAt >= 1, startAt+44, startAt+44)
	}))
	defer server.Close()

	sprints, err := testClient(server.URL).ListBoardSprints(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, sprints, 2)
	assert.Equal(t, 44, sprints[0].ID)
	assert.Equal(t, 45, sprints[1].ID)
}

func TestFileClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprint44.json")
	payload := `{
		"sprint": {"id": 44, "name": "Sprint 44", "state": "closed"},
		"issues": [
			{"key": "PROJ-1", "item_type": "História", "status": "Concluído", "story_points": 5},
			{"key": "PROJ-2", "item_type": "Bug", "status": "To Do"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	client := NewFileClient(path)

	sprint, err := client.GetSprint(context.Background(), 44)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 44", sprint.Name)

	issues, err := client.FetchSprintIssues(context.Background(), 44)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 5.0, issues[0].StoryPoints)

	sprints, err := client.ListBoardSprints(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, sprints, 1)
	assert.Equal(t, 44, sprints[0].ID)
}

func TestFileClientStampsRequestedID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sprint": {"name": "Export"}, "issues": []}`), 0o600))

	sprint, err := NewFileClient(path).GetSprint(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, 99, sprint.ID)
}

func TestFileClientMissingFile(t *testing.T) {
	_, err := NewFileClient("/nonexistent/sprint.json").FetchSprintIssues(context.Background(), 44)
	require.Error(t, err)
}

func TestSelectClient(t *testing.T) {
	fileCfg := &contract.Config{InputFile: "sprint.json"}
	_, ok := SelectClient(fileCfg).(*FileClient)
	assert.True(t, ok)

	apiCfg := &contract.Config{JiraBaseURL: "https://example.atlassian.net"}
	_, ok = SelectClient(apiCfg).(*Client)
	assert.True(t, ok)
}

package jiraclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// FileClient implements the IssueClient interface from a JSON export on
// disk, letting every analysis run offline against a saved dataset.
type FileClient struct {
	path string
}

var _ contract.IssueClient = &FileClient{} // Compile-time check

// NewFileClient creates a client backed by the given dataset file.
func NewFileClient(path string) *FileClient {
	return &FileClient{path: path}
}

// GetSprint implements the contract.IssueClient interface. When the stored
// sprint carries no ID the requested one is stamped in so downstream
// reporting stays coherent.
func (c *FileClient) GetSprint(_ context.Context, sprintID int) (schema.SprintInfo, error) {
	ds, err := c.load()
	if err != nil {
		return schema.SprintInfo{}, err
	}
	sprint := ds.Sprint
	if sprint.ID == 0 {
		sprint.ID = sprintID
	}
	return sprint, nil
}

// FetchSprintIssues implements the contract.IssueClient interface.
func (c *FileClient) FetchSprintIssues(_ context.Context, _ int) ([]schema.Issue, error) {
	ds, err := c.load()
	if err != nil {
		return nil, err
	}
	return ds.Issues, nil
}

// ListBoardSprints implements the contract.IssueClient interface. A file
// export holds exactly one sprint, so the listing has one entry.
func (c *FileClient) ListBoardSprints(_ context.Context, _ int) ([]schema.SprintInfo, error) {
	ds, err := c.load()
	if err != nil {
		return nil, err
	}
	return []schema.SprintInfo{ds.Sprint}, nil
}

func (c *FileClient) load() (*schema.Dataset, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", c.path, err)
	}
	var ds schema.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file %s: %w", c.path, err)
	}
	return &ds, nil
}

//go:build integration || database

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tcandido/sprintlens/schema"
)

var (
	// sharedBinaryPath holds the path to a shared sprintlens binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getSprintlensBinary returns the path to the sprintlens binary, building it once if needed.
func getSprintlensBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "sprintlens-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "sprintlens")
		buildCmd := exec.Command("go", "build", "-o", binPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build sprintlens: %v", err))
		}

		sharedBinaryPath = binPath
	})

	return sharedBinaryPath
}

// writeSampleDataset writes a small sprint export and returns its path.
// Sprint 44: ten issues, eight resolved, one bug, three people.
func writeSampleDataset(t *testing.T) string {
	t.Helper()

	start := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	end := start.Add(14 * 24 * time.Hour)
	people := []string{"Ana Silva", "Bruno Costa", "Carla Dias"}

	issues := make([]schema.Issue, 0, 10)
	for i := 0; i < 10; i++ {
		created := start.Add(time.Duration(i) * 6 * time.Hour)
		issue := schema.Issue{
			Key:         fmt.Sprintf("PROJ-%d", i+1),
			ItemType:    "História",
			Status:      "Concluído",
			Assignee:    people[i%len(people)],
			StoryPoints: float64(1 + i%5),
			CreatedAt:   &created,
		}
		if i == 3 {
			issue.ItemType = "Bug"
		}
		if i < 8 {
			resolved := created.Add(time.Duration(2+i%4) * 24 * time.Hour)
			issue.ResolvedAt = &resolved
		} else {
			issue.Status = "Em Progresso"
		}
		issues = append(issues, issue)
	}

	ds := &schema.Dataset{
		Sprint: schema.SprintInfo{
			ID:        44,
			Name:      "Sprint 44",
			State:     "closed",
			StartDate: &start,
			EndDate:   &end,
		},
		Issues: issues,
	}

	data, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("failed to encode sample dataset: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sprint44.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write sample dataset: %v", err)
	}
	return path
}

package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/iocache"
	"github.com/tcandido/sprintlens/schema"
)

// mockIssueClient is a testify mock of contract.IssueClient.
type mockIssueClient struct {
	mock.Mock
}

var _ contract.IssueClient = &mockIssueClient{} // Compile-time check

func (m *mockIssueClient) GetSprint(ctx context.Context, sprintID int) (schema.SprintInfo, error) {
	args := m.Called(ctx, sprintID)
	return args.Get(0).(schema.SprintInfo), args.Error(1)
}

func (m *mockIssueClient) FetchSprintIssues(ctx context.Context, sprintID int) ([]schema.Issue, error) {
	args := m.Called(ctx, sprintID)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

func (m *mockIssueClient) ListBoardSprints(ctx context.Context, boardID int) ([]schema.SprintInfo, error) {
	args := m.Called(ctx, boardID)
	sprints, _ := args.Get(0).([]schema.SprintInfo)
	return sprints, args.Error(1)
}

// memoryCacheStore is a thread-safe in-memory contract.CacheStore.
type memoryCacheStore struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data    []byte
	version int
	ts      int64
}

func newMemoryCacheStore() *memoryCacheStore {
	return &memoryCacheStore{entries: make(map[string]cacheEntry)}
}

func (s *memoryCacheStore) Get(key string) ([]byte, int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, 0, 0, errors.New("not found")
	}
	return e.data, e.version, e.ts, nil
}

func (s *memoryCacheStore) Set(key string, data []byte, version int, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cacheEntry{data: data, version: version, ts: ts}
	return nil
}

func (s *memoryCacheStore) GetStatus() (schema.CacheStatus, error) {
	return schema.CacheStatus{}, nil
}

func (s *memoryCacheStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]cacheEntry)
	return nil
}

func (s *memoryCacheStore) Close() error { return nil }

// memoryAnalysisStore is a thread-safe in-memory contract.AnalysisStore.
type memoryAnalysisStore struct {
	mu     sync.Mutex
	nextID int64
	ended  map[int64]int
	scores []schema.SprintScores
}

func newMemoryAnalysisStore() *memoryAnalysisStore {
	return &memoryAnalysisStore{ended: make(map[int64]int)}
}

func (s *memoryAnalysisStore) BeginAnalysis(_ time.Time, _ map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID, nil
}

func (s *memoryAnalysisStore) EndAnalysis(id int64, _ time.Time, totalSprints int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended[id] = totalSprints
	return nil
}

func (s *memoryAnalysisStore) RecordSprintScores(_ int64, scores schema.SprintScores) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, scores)
	return nil
}

func (s *memoryAnalysisStore) ListSprintScores(int) ([]schema.SprintScores, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.SprintScores, len(s.scores))
	copy(out, s.scores)
	return out, nil
}

func (s *memoryAnalysisStore) ListAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	return nil, nil
}

func (s *memoryAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	return schema.AnalysisStatus{}, nil
}

func (s *memoryAnalysisStore) Clear() error { return nil }
func (s *memoryAnalysisStore) Close() error { return nil }

// memoryManager bundles the in-memory stores into a contract.CacheManager.
type memoryManager struct {
	datasets *memoryCacheStore
	analysis *memoryAnalysisStore
}

func newMemoryManager() *memoryManager {
	return &memoryManager{datasets: newMemoryCacheStore(), analysis: newMemoryAnalysisStore()}
}

func (m *memoryManager) GetDatasetStore() contract.CacheStore {
	if m.datasets == nil {
		return nil
	}
	return m.datasets
}

func (m *memoryManager) GetAnalysisStore() contract.AnalysisStore {
	if m.analysis == nil {
		return nil
	}
	return m.analysis
}

func testConfig() *contract.Config {
	return &contract.Config{
		ProjectKey:       "PROJ",
		JiraBaseURL:      "https://example.atlassian.net",
		SprintIDs:        []int{44},
		StoryPointFields: contract.DefaultStoryPointFields,
		DaysPerPoint:     1.0,
		Workers:          2,
		CacheTTL:         time.Hour,
	}
}

func TestFetchDataset(t *testing.T) {
	t.Run("direct fetch without cache manager", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil).Once()
		client.On("FetchSprintIssues", mock.Anything, 44).
			Return([]schema.Issue{doneItem("P-1", "História", "Ana", 3, 3)}, nil).Once()

		ds, err := FetchDataset(context.Background(), testConfig(), client, nil, 44)
		require.NoError(t, err)
		assert.Equal(t, 44, ds.Sprint.ID)
		assert.Equal(t, 1, ds.Len())
		client.AssertExpectations(t)
	})

	t.Run("second fetch is a cache hit", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil).Once()
		client.On("FetchSprintIssues", mock.Anything, 44).
			Return([]schema.Issue{doneItem("P-1", "História", "Ana", 3, 3)}, nil).Once()

		mgr := newMemoryManager()
		cfg := testConfig()

		first, err := FetchDataset(context.Background(), cfg, client, mgr, 44)
		require.NoError(t, err)

		// Client expectations are .Once(); a second upstream call would fail
		second, err := FetchDataset(context.Background(), cfg, client, mgr, 44)
		require.NoError(t, err)

		assert.Equal(t, first.Sprint, second.Sprint)
		assert.Equal(t, first.Len(), second.Len())
		client.AssertExpectations(t)
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil).Twice()
		client.On("FetchSprintIssues", mock.Anything, 44).Return([]schema.Issue{}, nil).Twice()

		mgr := newMemoryManager()
		cfg := testConfig()

		_, err := FetchDataset(context.Background(), cfg, client, mgr, 44)
		require.NoError(t, err)

		// Backdate the single entry beyond the TTL
		for key, entry := range mgr.datasets.entries {
			entry.ts = time.Now().Add(-2 * time.Hour).Unix()
			mgr.datasets.entries[key] = entry
		}

		_, err = FetchDataset(context.Background(), cfg, client, mgr, 44)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("version mismatch invalidates the entry", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil).Twice()
		client.On("FetchSprintIssues", mock.Anything, 44).Return([]schema.Issue{}, nil).Twice()

		mgr := newMemoryManager()
		cfg := testConfig()

		_, err := FetchDataset(context.Background(), cfg, client, mgr, 44)
		require.NoError(t, err)

		for key, entry := range mgr.datasets.entries {
			entry.version = currentCacheVersion + 1
			mgr.datasets.entries[key] = entry
		}

		_, err = FetchDataset(context.Background(), cfg, client, mgr, 44)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("fetch errors propagate", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(schema.SprintInfo{}, errors.New("boom"))

		_, err := FetchDataset(context.Background(), testConfig(), client, nil, 44)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sprint 44")
	})

	t.Run("store errors degrade to direct fetch", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil).Once()
		client.On("FetchSprintIssues", mock.Anything, 44).
			Return([]schema.Issue{doneItem("P-1", "História", "Ana", 3, 3)}, nil).Once()

		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).Return([]byte(nil), 0, int64(0), errors.New("disk gone"))
		store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).
			Return(errors.New("disk gone"))

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetDatasetStore").Return(store)

		ds, err := FetchDataset(context.Background(), testConfig(), client, mgr, 44)
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Len())
		client.AssertExpectations(t)
		store.AssertExpectations(t)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	cfg := testConfig()

	keyA := generateCacheKey(cfg, 44)
	keyB := generateCacheKey(cfg, 45)
	assert.NotEqual(t, keyA, keyB, "different sprints must have different keys")

	remapped := cfg.Clone()
	remapped.StoryPointFields = []string{"customfield_20001"}
	assert.NotEqual(t, keyA, generateCacheKey(remapped, 44), "field remapping must invalidate the key")

	assert.Equal(t, keyA, generateCacheKey(cfg, 44), "key generation must be deterministic")
}

func TestRunSprintAnalysis(t *testing.T) {
	client := &mockIssueClient{}
	client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil)
	client.On("FetchSprintIssues", mock.Anything, 44).
		Return(referenceSprint().Issues, nil)

	mgr := newMemoryManager()
	ctx := WithSuppressHeader(context.Background())

	analysis, err := RunSprintAnalysis(ctx, testConfig(), client, mgr, 44)
	require.NoError(t, err)

	assert.InDelta(t, 93.25, analysis.Efficiency.FinalScore, 1e-9)
	assert.NotNil(t, analysis.Distribution)
	assert.NotNil(t, analysis.Metrics)
	assert.Equal(t, 8, analysis.TimeStats.Count)

	// Scores were recorded and the run finalized
	scores, err := mgr.analysis.ListSprintScores(0)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 44, scores[0].SprintID)
	assert.InDelta(t, 93.25, scores[0].EfficiencyScore, 1e-9)
	assert.Equal(t, "Excellent", scores[0].Classification)
	assert.Equal(t, 1, mgr.analysis.ended[1])
}

func TestBuildSprintScores(t *testing.T) {
	analysis := AnalyzeDataset(testConfig(), referenceSprint())
	scores := BuildSprintScores(analysis)

	assert.Equal(t, 44, scores.SprintID)
	assert.Equal(t, "Sprint 44", scores.SprintName)
	assert.Equal(t, 10, scores.TotalItems)
	assert.Equal(t, 8, scores.CompletedItems)
	assert.InDelta(t, 90.0, scores.VelocityScore, 1e-9)
	assert.InDelta(t, 85.0, scores.QualityScore, 1e-9)
	assert.NotEmpty(t, scores.TeamHealth)
}

func TestRunBatchAnalysis(t *testing.T) {
	t.Run("results ordered by sprint id", func(t *testing.T) {
		client := &mockIssueClient{}
		for _, id := range []int{46, 44, 45} {
			sprint := schema.SprintInfo{ID: id, Name: "Sprint", StartDate: timePtr(testSprintStart)}
			client.On("GetSprint", mock.Anything, id).Return(sprint, nil)
			client.On("FetchSprintIssues", mock.Anything, id).
				Return([]schema.Issue{doneItem("P-1", "História", "Ana", 3, 3)}, nil)
		}

		cfg := testConfig()
		cfg.SprintIDs = []int{46, 44, 45}
		cfg.Workers = 3

		result, err := RunBatchAnalysis(context.Background(), cfg, client, newMemoryManager())
		require.NoError(t, err)

		assert.Equal(t, 3, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, 3, result.TotalItems)
		require.Len(t, result.Items, 3)
		assert.Equal(t, 44, result.Items[0].Sprint.ID)
		assert.Equal(t, 45, result.Items[1].Sprint.ID)
		assert.Equal(t, 46, result.Items[2].Sprint.ID)
	})

	t.Run("per sprint failures are collected not fatal", func(t *testing.T) {
		client := &mockIssueClient{}
		client.On("GetSprint", mock.Anything, 44).Return(testSprint(), nil)
		client.On("FetchSprintIssues", mock.Anything, 44).
			Return([]schema.Issue{doneItem("P-1", "História", "Ana", 3, 3)}, nil)
		client.On("GetSprint", mock.Anything, 45).
			Return(schema.SprintInfo{}, errors.New("gone"))

		cfg := testConfig()
		cfg.SprintIDs = []int{44, 45}

		result, err := RunBatchAnalysis(context.Background(), cfg, client, newMemoryManager())
		require.NoError(t, err)

		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Items, 2)
		assert.NoError(t, result.Items[0].Err)
		assert.Error(t, result.Items[1].Err)
		assert.Equal(t, 45, result.Items[1].Sprint.ID)
	})

	t.Run("batch records per sprint scores", func(t *testing.T) {
		client := &mockIssueClient{}
		for _, id := range []int{44, 45} {
			sprint := schema.SprintInfo{ID: id, StartDate: timePtr(testSprintStart)}
			client.On("GetSprint", mock.Anything, id).Return(sprint, nil)
			client.On("FetchSprintIssues", mock.Anything, id).
				Return([]schema.Issue{doneItem("P-1", "História", "Ana", 3, 3)}, nil)
		}

		cfg := testConfig()
		cfg.SprintIDs = []int{44, 45}
		mgr := newMemoryManager()

		_, err := RunBatchAnalysis(context.Background(), cfg, client, mgr)
		require.NoError(t, err)

		scores, err := mgr.analysis.ListSprintScores(0)
		require.NoError(t, err)
		assert.Len(t, scores, 2)
		assert.Equal(t, 2, mgr.analysis.ended[1])
	})

	t.Run("worker pool preserves result integrity", func(t *testing.T) {
		client := &mockIssueClient{}
		ids := make([]int, 0, 20)
		for id := 1; id <= 20; id++ {
			ids = append(ids, id)
			sprint := schema.SprintInfo{ID: id, StartDate: timePtr(testSprintStart)}
			issues := make([]schema.Issue, 0, id)
			for n := 0; n < id; n++ {
				issues = append(issues, doneItem(itemKey(n), "História", "Ana", 2, 2))
			}
			client.On("GetSprint", mock.Anything, id).Return(sprint, nil)
			client.On("FetchSprintIssues", mock.Anything, id).Return(issues, nil)
		}

		cfg := testConfig()
		cfg.SprintIDs = ids
		cfg.Workers = 8

		result, err := RunBatchAnalysis(context.Background(), cfg, client, newMemoryManager())
		require.NoError(t, err)

		require.Len(t, result.Items, 20)
		for i, item := range result.Items {
			// Sprint N was built with exactly N items
			assert.Equal(t, i+1, item.Sprint.ID)
			assert.Equal(t, i+1, item.Items)
		}
	})
}

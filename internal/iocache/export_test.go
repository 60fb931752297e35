package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcandido/sprintlens/schema"
)

func TestExecuteAnalysisExport(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	analysisID, err := store.BeginAnalysis(time.Now(), map[string]any{"project": "PROJ"})
	require.NoError(t, err)
	require.NoError(t, store.RecordSprintScores(analysisID, sampleScores(44)))
	require.NoError(t, store.EndAnalysis(analysisID, time.Now(), 1))

	outputFile := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteAnalysisExport(store, outputFile))

	for _, suffix := range []string{".analysis_runs.parquet", ".sprint_scores.parquet"} {
		info, err := os.Stat(outputFile + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestExecuteAnalysisExportValidation(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	// Missing output file
	assert.Error(t, ExecuteAnalysisExport(store, ""))

	// Missing store
	assert.Error(t, ExecuteAnalysisExport(nil, filepath.Join(t.TempDir(), "export")))

	// Empty history
	err := ExecuteAnalysisExport(store, filepath.Join(t.TempDir(), "export"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis data")
}

func TestExecuteAnalysisExportStoreErrors(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "export")
	status := schema.AnalysisStatus{
		Backend:    schema.SQLiteBackend,
		Connected:  true,
		TotalRuns:  1,
		TableSizes: map[string]int64{sprintScoresTable: 1},
	}

	t.Run("status failure", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{}, errors.New("connection reset"))

		err := ExecuteAnalysisExport(store, outputFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get analysis status")
		store.AssertExpectations(t)
	})

	t.Run("run listing failure", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(status, nil)
		store.On("ListAnalysisRuns").Return(nil, errors.New("table dropped"))

		err := ExecuteAnalysisExport(store, outputFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to retrieve analysis runs")
		store.AssertExpectations(t)
	})

	t.Run("score listing failure", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(status, nil)
		store.On("ListAnalysisRuns").Return([]schema.AnalysisRunRecord{}, nil)
		store.On("ListSprintScores", 0).Return(nil, errors.New("table dropped"))

		err := ExecuteAnalysisExport(store, outputFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to retrieve sprint scores")
		store.AssertExpectations(t)
	})
}

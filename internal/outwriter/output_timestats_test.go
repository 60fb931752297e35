package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/tcandido/sprintlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGroups() []schema.GroupTimeStats {
	return []schema.GroupTimeStats{
		{Group: "Ana Silva", MeanDays: 2.5, Count: 4},
		{Group: "Bruno Costa", MeanDays: 4, Count: 4},
	}
}

func TestWriteTimeStatsTable(t *testing.T) {
	cfg := textConfig(schema.TextOut)

	var buf bytes.Buffer
	err := WriteTimeStatsTable(&buf, sampleSprint(), sampleTimeStats(), sampleGroups(), cfg, 5*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Resolution Time: Sprint 44 (#44)")
	assert.Contains(t, output, "Mean")
	assert.Contains(t, output, "3.25")
	assert.Contains(t, output, "Resolved items: 8")
	assert.Contains(t, output, "By assignee:")
	assert.Contains(t, output, "Bruno Costa")
}

func TestWriteTimeStatsTableNoResolvedItems(t *testing.T) {
	cfg := textConfig(schema.TextOut)

	var buf bytes.Buffer
	err := WriteTimeStatsTable(&buf, sampleSprint(), schema.TimeStats{}, nil, cfg, time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "No resolved items in this sprint.")
	assert.NotContains(t, output, "Mean")
}

func TestWriteTimeStatsCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	err := writeTimeStatsCSV(&buf, sampleTimeStats(), sampleGroups(), fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4) // header + overall + 2 groups

	assert.Contains(t, lines[0], "mean_days")
	assert.True(t, strings.HasPrefix(lines[1], "overall,"))
	assert.Contains(t, lines[1], "3.25")
	assert.Contains(t, lines[2], "Ana Silva")
}

func TestWriteTimeStatsCSVNilStats(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	err := writeTimeStatsCSV(&buf, schema.TimeStats{}, nil, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "overall,,,,,,,0", lines[1])
}

func TestWriteTimeStatsJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeTimeStatsJSON(&buf, sampleSprint(), sampleTimeStats(), sampleGroups())
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))

	stats, ok := result["time_stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(8), stats["count"])
	assert.Equal(t, 3.25, stats["mean"])

	groups, ok := result["groups"].([]any)
	require.True(t, ok)
	assert.Len(t, groups, 2)
}

func TestFmtOptDays(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	assert.Equal(t, "n/a", fmtOptDays(nil, fmtFloat))
	assert.Equal(t, "2.5", fmtOptDays(schema.Float64Ptr(2.5), fmtFloat))
}

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

func TestWriteEfficiencyTable(t *testing.T) {
	cfg := textConfig(schema.TextOut)

	var buf bytes.Buffer
	err := WriteEfficiencyTable(&buf, sampleSprint(), sampleScoreResult(), cfg, 5*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Sprint Efficiency: Sprint 44 (#44)")
	assert.Contains(t, output, "Velocity")
	assert.Contains(t, output, "Predictability")
	assert.Contains(t, output, "Final score: 93.25 (Excellent)")
	assert.Contains(t, output, "Insights:")
	assert.Contains(t, output, "Keep the current planning cadence")
	assert.Contains(t, output, "Cache backend: sqlite")
}

func TestWriteEfficiencyCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	err := writeEfficiencyCSV(&buf, sampleSprint(), sampleScoreResult(), fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6) // header + 4 dimensions + final row

	assert.Contains(t, lines[0], "dimension")
	assert.Contains(t, lines[1], "velocity")
	assert.Contains(t, lines[5], "final")
	assert.Contains(t, lines[5], "Excellent")
}

func TestWriteEfficiencyJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeEfficiencyJSON(&buf, sampleSprint(), sampleScoreResult())
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))

	sprint, ok := result["sprint"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(44), sprint["id"])

	eff, ok := result["efficiency"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 93.25, eff["final_score"])
	assert.Equal(t, "Excellent", eff["classification"])
}

func TestPrintEfficiencyResultsDimensionOrder(t *testing.T) {
	cfg := textConfig(schema.TextOut)

	var buf bytes.Buffer
	err := WriteEfficiencyTable(&buf, sampleSprint(), sampleScoreResult(), cfg, time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	velocityAt := strings.Index(output, "Velocity")
	stabilityAt := strings.Index(output, "Stability")
	require.NotEqual(t, -1, velocityAt)
	require.NotEqual(t, -1, stabilityAt)
	assert.Less(t, velocityAt, stabilityAt)
}

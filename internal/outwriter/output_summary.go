package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// PrintSummaryResults outputs the combined sprint analysis, dispatching based
// on the output format configured.
func PrintSummaryResults(analysis *core.SprintAnalysis, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryJSON(w, analysis)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmtFloat, _ := createFormatters(cfg.Precision)
			return writeSummaryCSV(w, analysis, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteSummaryText(w, analysis, cfg, duration)
		}, "Wrote table")
	}
}

// WriteSummaryText generates and writes the human-readable combined report.
// Each engine gets one line; the per-engine commands carry the detail.
func WriteSummaryText(w io.Writer, analysis *core.SprintAnalysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	sprint := analysis.Dataset.Sprint

	if _, err := fmt.Fprintf(w, "%s: %s\n\n", headerTitle(cfg, "🔍", "Sprint Summary"), sprintCaption(sprint)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Items: %d total, %d completed\n",
		analysis.Dataset.Len(), analysis.Dataset.CompletedCount()); err != nil {
		return err
	}
	eff := analysis.Efficiency
	if _, err := fmt.Fprintf(w, "Efficiency: %s (%s) [%s]\n",
		fmtFloat(eff.FinalScore), eff.Classification, scoreLabel(cfg, eff.FinalScore)); err != nil {
		return err
	}
	dist := analysis.Distribution
	if _, err := fmt.Fprintf(w, "Knowledge: %s, bus factor %d, team health %s\n",
		fmtFloat(dist.Score), dist.BusFactor, dist.TeamHealth); err != nil {
		return err
	}
	stats := analysis.TimeStats
	if stats.Count == 0 {
		if _, err := fmt.Fprintln(w, "Resolution time: no resolved items"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "Resolution time: mean %s days, median %s days over %d resolved\n",
			fmtOptDays(stats.Mean, fmtFloat), fmtOptDays(stats.Median, fmtFloat), stats.Count); err != nil {
			return err
		}
	}
	q := analysis.Metrics.Quality
	if _, err := fmt.Fprintf(w, "Quality: %d bugs, %d impediments, score %s\n\n",
		q.TotalBugs, q.TotalImpedims, fmtFloat(q.QualityScore)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeSummaryCSV writes the headline numbers as flat metric/value rows.
func writeSummaryCSV(w io.Writer, analysis *core.SprintAnalysis, fmtFloat func(float64) string) error {
	header := []string{"metric", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		stats := analysis.TimeStats
		meanDays := ""
		if stats.Mean != nil {
			meanDays = fmtFloat(*stats.Mean)
		}
		rows := [][]string{
			{"sprint_id", strconv.Itoa(analysis.Dataset.Sprint.ID)},
			{"sprint_name", analysis.Dataset.Sprint.Name},
			{"total_items", strconv.Itoa(analysis.Dataset.Len())},
			{"completed_items", strconv.Itoa(analysis.Dataset.CompletedCount())},
			{"efficiency_score", fmtFloat(analysis.Efficiency.FinalScore)},
			{"classification", analysis.Efficiency.Classification},
			{"distribution_score", fmtFloat(analysis.Distribution.Score)},
			{"bus_factor", strconv.Itoa(analysis.Distribution.BusFactor)},
			{"team_health", string(analysis.Distribution.TeamHealth)},
			{"mean_resolution_days", meanDays},
			{"resolved_items", strconv.Itoa(stats.Count)},
			{"quality_score", fmtFloat(analysis.Metrics.Quality.QualityScore)},
		}
		for _, rec := range rows {
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeSummaryJSON writes the full combined analysis in JSON format.
func writeSummaryJSON(w io.Writer, analysis *core.SprintAnalysis) error {
	payload := struct {
		Sprint       schema.SprintInfo          `json:"sprint"`
		Efficiency   *schema.ScoreResult        `json:"efficiency"`
		Distribution *schema.DistributionResult `json:"distribution"`
		TimeStats    schema.TimeStats           `json:"time_stats"`
		Metrics      *schema.SprintMetrics      `json:"metrics"`
	}{
		Sprint:       analysis.Dataset.Sprint,
		Efficiency:   analysis.Efficiency,
		Distribution: analysis.Distribution,
		TimeStats:    analysis.TimeStats,
		Metrics:      analysis.Metrics,
	}
	return writeJSON(w, payload)
}

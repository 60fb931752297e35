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

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintEfficiencyResults outputs the sprint efficiency score, dispatching
// based on the output format configured.
func PrintEfficiencyResults(sprint schema.SprintInfo, result *schema.ScoreResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEfficiencyJSON(w, sprint, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmtFloat, _ := createFormatters(cfg.Precision)
			return writeEfficiencyCSV(w, sprint, result, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteEfficiencyTable(w, sprint, result, cfg, duration)
		}, "Wrote table")
	}
}

// WriteEfficiencyTable generates and writes the human-readable efficiency report.
func WriteEfficiencyTable(w io.Writer, sprint schema.SprintInfo, result *schema.ScoreResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%s: %s\n\n", headerTitle(cfg, "📊", "Sprint Efficiency"), sprintCaption(sprint)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Score", "Weight", "Contribution", "Label"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, dim := range schema.AllDimensions {
		comp, ok := result.Components[dim]
		if !ok {
			continue
		}
		data = append(data, []string{
			core.DimensionLabel(dim),
			fmtFloat(comp.Score),
			fmt.Sprintf("%.2f", comp.Weight),
			fmtFloat(comp.Contribution),
			scoreLabel(cfg, comp.Score),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Final score: %s (%s)\n", fmtFloat(result.FinalScore), result.Classification); err != nil {
		return err
	}
	if err := writeBulletSection(w, "Insights", result.Insights); err != nil {
		return err
	}
	if err := writeBulletSection(w, "Recommendations", result.Recommendations); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeBulletSection writes a titled bullet list, skipping empty sections.
func writeBulletSection(w io.Writer, title string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s:\n", title); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "  - %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// writeEfficiencyCSV writes the efficiency score in CSV format, one row per
// dimension plus a final row carrying the composite score.
func writeEfficiencyCSV(w io.Writer, sprint schema.SprintInfo, result *schema.ScoreResult, fmtFloat func(float64) string) error {
	header := []string{"sprint_id", "sprint_name", "dimension", "score", "weight", "contribution", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, dim := range schema.AllDimensions {
			comp, ok := result.Components[dim]
			if !ok {
				continue
			}
			rec := []string{
				strconv.Itoa(sprint.ID),
				sprint.Name,
				string(dim),
				fmtFloat(comp.Score),
				fmt.Sprintf("%.2f", comp.Weight),
				fmtFloat(comp.Contribution),
				contract.GetPlainLabel(comp.Score),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		final := []string{
			strconv.Itoa(sprint.ID),
			sprint.Name,
			"final",
			fmtFloat(result.FinalScore),
			"",
			"",
			result.Classification,
		}
		return cw.Write(final)
	})
}

// writeEfficiencyJSON writes the efficiency score in JSON format.
func writeEfficiencyJSON(w io.Writer, sprint schema.SprintInfo, result *schema.ScoreResult) error {
	payload := struct {
		Sprint     schema.SprintInfo   `json:"sprint"`
		Efficiency *schema.ScoreResult `json:"efficiency"`
	}{
		Sprint:     sprint,
		Efficiency: result,
	}
	return writeJSON(w, payload)
}

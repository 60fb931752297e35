package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintKnowledgeResults outputs the knowledge distribution analysis,
// dispatching based on the output format configured.
func PrintKnowledgeResults(sprint schema.SprintInfo, result *schema.DistributionResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeKnowledgeJSON(w, sprint, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmtFloat, _ := createFormatters(cfg.Precision)
			return writeKnowledgeCSV(w, sprint, result, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteKnowledgeTable(w, sprint, result, cfg, duration)
		}, "Wrote table")
	}
}

// WriteKnowledgeTable generates and writes the human-readable distribution report.
func WriteKnowledgeTable(w io.Writer, sprint schema.SprintInfo, result *schema.DistributionResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%s: %s\n\n", headerTitle(cfg, "🧠", "Knowledge Distribution"), sprintCaption(sprint)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Distribution score: %s (%s)\n", fmtFloat(result.Score), scoreLabel(cfg, result.Score)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Bus factor: %d\n", result.BusFactor); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Team health: %s\n\n", result.TeamHealth); err != nil {
		return err
	}

	maxName := getMaxTableNameWidth(cfg, 45) // Items + Share + Level + Risk columns
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Person", "Items", "Share", "Level", "Risk"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range result.Concentration {
		data = append(data, []string{
			contract.TruncateText(c.Person, maxName),
			fmt.Sprintf(intFmt, c.Items),
			fmtFloat(c.Percentage) + "%",
			string(c.ConcentrationLevel),
			string(c.RiskLevel),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(result.Risks) > 0 {
		if _, err := fmt.Fprintf(w, "\nRisks:\n"); err != nil {
			return err
		}
		for _, r := range result.Risks {
			if _, err := fmt.Fprintf(w, "  - [%s] %s: %s (%s)\n", r.Severity, r.Person, r.Description, r.Impact); err != nil {
				return err
			}
		}
	}
	if err := writeBulletSection(w, "Recommendations", result.Recommendations); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\nPeople: %d across %d knowledge areas (coverage overlap %s%%)\n",
		result.Metrics.TotalPeople, result.Metrics.KnowledgeAreas, fmtFloat(result.Metrics.CoverageOverlap)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeKnowledgeCSV writes the per-person concentration rows in CSV format.
func writeKnowledgeCSV(w io.Writer, sprint schema.SprintInfo, result *schema.DistributionResult, fmtFloat func(float64) string) error {
	header := []string{"sprint_id", "person", "items", "percentage", "concentration_level", "risk_level"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range result.Concentration {
			rec := []string{
				strconv.Itoa(sprint.ID),
				c.Person,
				strconv.Itoa(c.Items),
				fmtFloat(c.Percentage),
				string(c.ConcentrationLevel),
				string(c.RiskLevel),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeKnowledgeJSON writes the full distribution analysis in JSON format.
func writeKnowledgeJSON(w io.Writer, sprint schema.SprintInfo, result *schema.DistributionResult) error {
	payload := struct {
		Sprint       schema.SprintInfo          `json:"sprint"`
		Distribution *schema.DistributionResult `json:"distribution"`
	}{
		Sprint:       sprint,
		Distribution: result,
	}
	return writeJSON(w, payload)
}

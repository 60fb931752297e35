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

// PrintTimeStatsResults outputs resolution time statistics, dispatching based
// on the output format configured.
func PrintTimeStatsResults(sprint schema.SprintInfo, stats schema.TimeStats, groups []schema.GroupTimeStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTimeStatsJSON(w, sprint, stats, groups)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmtFloat, _ := createFormatters(cfg.Precision)
			return writeTimeStatsCSV(w, stats, groups, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteTimeStatsTable(w, sprint, stats, groups, cfg, duration)
		}, "Wrote table")
	}
}

// WriteTimeStatsTable generates and writes the human-readable time report.
func WriteTimeStatsTable(w io.Writer, sprint schema.SprintInfo, stats schema.TimeStats, groups []schema.GroupTimeStats, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%s: %s\n\n", headerTitle(cfg, "⏱️", "Resolution Time"), sprintCaption(sprint)); err != nil {
		return err
	}
	if stats.Count == 0 {
		if _, err := fmt.Fprintln(w, "No resolved items in this sprint."); err != nil {
			return err
		}
		return writeFooter(w, cfg, duration)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Statistic", "Days"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	data := [][]string{
		{"Mean", fmtOptDays(stats.Mean, fmtFloat)},
		{"Median", fmtOptDays(stats.Median, fmtFloat)},
		{"P85", fmtOptDays(stats.P85, fmtFloat)},
		{"Min", fmtOptDays(stats.Min, fmtFloat)},
		{"Max", fmtOptDays(stats.Max, fmtFloat)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Resolved items: %d\n", stats.Count); err != nil {
		return err
	}

	if len(groups) > 0 {
		if _, err := fmt.Fprintf(w, "\nBy %s:\n", cfg.GroupBy); err != nil {
			return err
		}
		maxName := getMaxTableNameWidth(cfg, 25) // Mean Days + Count columns
		groupTable := tablewriter.NewWriter(w)
		groupTable.Header([]string{"Group", "Mean Days", "Count"})
		groupTable.Configure(func(tcfg *tablewriter.Config) {
			tcfg.Row.Alignment.Global = tw.AlignRight
		})
		var rows [][]string
		for _, g := range groups {
			rows = append(rows, []string{
				contract.TruncateText(g.Group, maxName),
				fmtFloat(g.MeanDays),
				fmt.Sprintf(intFmt, g.Count),
			})
		}
		if err := groupTable.Bulk(rows); err != nil {
			return err
		}
		if err := groupTable.Render(); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// fmtOptDays renders an optional statistic, falling back to "n/a" when the
// underlying sample was empty.
func fmtOptDays(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return "n/a"
	}
	return fmtFloat(*v)
}

// writeTimeStatsCSV writes the statistics in CSV format. The overall row
// carries the full statistic set; group rows carry mean and count only.
func writeTimeStatsCSV(w io.Writer, stats schema.TimeStats, groups []schema.GroupTimeStats, fmtFloat func(float64) string) error {
	header := []string{"scope", "group", "mean_days", "median_days", "p85_days", "min_days", "max_days", "count"}
	optCSV := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmtFloat(*v)
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		overall := []string{
			"overall",
			"",
			optCSV(stats.Mean),
			optCSV(stats.Median),
			optCSV(stats.P85),
			optCSV(stats.Min),
			optCSV(stats.Max),
			strconv.Itoa(stats.Count),
		}
		if err := cw.Write(overall); err != nil {
			return err
		}
		for _, g := range groups {
			rec := []string{
				"group",
				g.Group,
				fmtFloat(g.MeanDays),
				"",
				"",
				"",
				"",
				strconv.Itoa(g.Count),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeTimeStatsJSON writes the statistics in JSON format.
func writeTimeStatsJSON(w io.Writer, sprint schema.SprintInfo, stats schema.TimeStats, groups []schema.GroupTimeStats) error {
	payload := struct {
		Sprint schema.SprintInfo      `json:"sprint"`
		Stats  schema.TimeStats       `json:"time_stats"`
		Groups []schema.GroupTimeStats `json:"groups,omitempty"`
	}{
		Sprint: sprint,
		Stats:  stats,
		Groups: groups,
	}
	return writeJSON(w, payload)
}

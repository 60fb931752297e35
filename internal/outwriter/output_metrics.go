package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintMetricsResults outputs the sprint metrics facade, dispatching based on
// the output format configured.
func PrintMetricsResults(m *schema.SprintMetrics, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, m)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmtFloat, _ := createFormatters(cfg.Precision)
			return writeMetricsCSV(w, m, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteMetricsTable(w, m, cfg, duration)
		}, "Wrote table")
	}
}

// WriteMetricsTable generates and writes the human-readable metrics report.
func WriteMetricsTable(w io.Writer, m *schema.SprintMetrics, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%s: %s\n\n", headerTitle(cfg, "📈", "Sprint Metrics"), sprintCaption(m.Sprint)); err != nil {
		return err
	}

	e := m.Executive
	if _, err := fmt.Fprintf(w, "Executive: %d items (%d stories, %d tech debt, %d spikes, %d bugs, %d impediments)\n",
		e.TotalItems, e.Stories, e.TechDebt, e.Spikes, e.Bugs, e.Impediments); err != nil {
		return err
	}
	v := m.Velocity
	if _, err := fmt.Fprintf(w, "Velocity: %s points committed, %s completed (%s%% completion, %d estimated items)\n",
		fmtFloat(v.TotalStoryPoints), fmtFloat(v.CompletedStoryPoints), fmtFloat(v.CompletionRate), v.EstimatedItems); err != nil {
		return err
	}
	q := m.Quality
	if _, err := fmt.Fprintf(w, "Quality: %d bugs (%s%%), %d impediments (%s%%), score %s (%s)\n",
		q.TotalBugs, fmtFloat(q.BugRate), q.TotalImpedims, fmtFloat(q.ImpedimentRate),
		fmtFloat(q.QualityScore), scoreLabel(cfg, q.QualityScore)); err != nil {
		return err
	}
	f := m.Flow
	if _, err := fmt.Fprintf(w, "Flow: %d in progress, %d delivered, average cycle time %s days\n\n",
		f.WIPCount, f.ThroughputCount, fmtFloat(f.AverageCycleTime)); err != nil {
		return err
	}

	maxName := getMaxTableNameWidth(cfg, 25) // Items + Share columns
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Member", "Items", "Share"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, member := range sortedMembers(m.Team) {
		data = append(data, []string{
			contract.TruncateText(member, maxName),
			fmt.Sprintf(intFmt, m.Team.ItemsPerMember[member]),
			fmtFloat(m.Team.WorkloadPercent[member]) + "%",
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if m.Team.MostLoadedMember != "" {
		if _, err := fmt.Fprintf(w, "Most loaded: %s (%d items)\n", m.Team.MostLoadedMember, m.Team.MaxItems); err != nil {
			return err
		}
	}
	return writeFooter(w, cfg, duration)
}

// sortedMembers orders team members by descending item count, then name, so
// table output is deterministic.
func sortedMembers(team schema.TeamMetrics) []string {
	members := make([]string, 0, len(team.ItemsPerMember))
	for member := range team.ItemsPerMember {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		a, b := team.ItemsPerMember[members[i]], team.ItemsPerMember[members[j]]
		if a != b {
			return a > b
		}
		return members[i] < members[j]
	})
	return members
}

// writeMetricsCSV writes the metrics facade as flat section/metric/value rows.
func writeMetricsCSV(w io.Writer, m *schema.SprintMetrics, fmtFloat func(float64) string) error {
	header := []string{"section", "metric", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		rows := [][]string{
			{"executive", "total_items", strconv.Itoa(m.Executive.TotalItems)},
			{"executive", "stories", strconv.Itoa(m.Executive.Stories)},
			{"executive", "tech_debt", strconv.Itoa(m.Executive.TechDebt)},
			{"executive", "spikes", strconv.Itoa(m.Executive.Spikes)},
			{"executive", "bugs", strconv.Itoa(m.Executive.Bugs)},
			{"executive", "impediments", strconv.Itoa(m.Executive.Impediments)},
			{"velocity", "total_story_points", fmtFloat(m.Velocity.TotalStoryPoints)},
			{"velocity", "completed_story_points", fmtFloat(m.Velocity.CompletedStoryPoints)},
			{"velocity", "completion_rate", fmtFloat(m.Velocity.CompletionRate)},
			{"velocity", "estimated_items", strconv.Itoa(m.Velocity.EstimatedItems)},
			{"velocity", "average_story_points", fmtFloat(m.Velocity.AverageStoryPoints)},
			{"quality", "total_bugs", strconv.Itoa(m.Quality.TotalBugs)},
			{"quality", "total_impediments", strconv.Itoa(m.Quality.TotalImpedims)},
			{"quality", "bug_rate", fmtFloat(m.Quality.BugRate)},
			{"quality", "impediment_rate", fmtFloat(m.Quality.ImpedimentRate)},
			{"quality", "quality_score", fmtFloat(m.Quality.QualityScore)},
			{"flow", "wip_count", strconv.Itoa(m.Flow.WIPCount)},
			{"flow", "throughput_count", strconv.Itoa(m.Flow.ThroughputCount)},
			{"flow", "average_cycle_time", fmtFloat(m.Flow.AverageCycleTime)},
			{"team", "total_members", strconv.Itoa(m.Team.TotalMembers)},
		}
		for _, member := range sortedMembers(m.Team) {
			rows = append(rows, []string{"team", member, strconv.Itoa(m.Team.ItemsPerMember[member])})
		}
		for _, rec := range rows {
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

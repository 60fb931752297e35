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

// PrintBatchResults outputs the multi-sprint batch results, dispatching based
// on the output format configured.
func PrintBatchResults(result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			fmtFloat, _ := createFormatters(cfg.Precision)
			return writeBatchCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteBatchTable(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// WriteBatchTable generates and writes the human-readable batch report.
func WriteBatchTable(w io.Writer, result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%s\n\n", headerTitle(cfg, "🚀", "Batch Analysis")); err != nil {
		return err
	}

	maxName := getMaxTableNameWidth(cfg, 40) // Sprint + State + Items + Score + Label columns
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Sprint", "Name", "State", "Items", "Score", "Label"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, item := range result.Items {
		row := []string{
			strconv.Itoa(item.Sprint.ID),
			contract.TruncateText(item.Sprint.Name, maxName),
			item.Sprint.State,
		}
		if item.Err != nil {
			row = append(row, "-", "-", contract.TruncateText(fmt.Sprintf("error: %v", item.Err), maxName))
		} else {
			row = append(row,
				fmt.Sprintf(intFmt, item.Items),
				fmtFloat(item.Efficiency.FinalScore),
				scoreLabel(cfg, item.Efficiency.FinalScore),
			)
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Analyzed %d sprints: %d succeeded, %d failed (total items: %d)\n",
		len(result.Items), result.Succeeded, result.Failed, result.TotalItems); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeBatchCSV writes the batch results in CSV format.
func writeBatchCSV(w io.Writer, result *schema.BatchResult, fmtFloat func(float64) string) error {
	header := []string{"sprint_id", "sprint_name", "state", "items", "score", "classification", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, item := range result.Items {
			rec := []string{
				strconv.Itoa(item.Sprint.ID),
				item.Sprint.Name,
				item.Sprint.State,
			}
			if item.Err != nil {
				rec = append(rec, "", "", "", item.Err.Error())
			} else {
				rec = append(rec,
					strconv.Itoa(item.Items),
					fmtFloat(item.Efficiency.FinalScore),
					item.Efficiency.Classification,
					"",
				)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeBatchJSON writes the batch results in JSON format. Errors are flattened
// to strings so every item serializes.
func writeBatchJSON(w io.Writer, result *schema.BatchResult) error {
	type jsonBatchItem struct {
		Sprint     schema.SprintInfo   `json:"sprint"`
		Items      int                 `json:"items"`
		Efficiency *schema.ScoreResult `json:"efficiency,omitempty"`
		Error      string              `json:"error,omitempty"`
	}

	items := make([]jsonBatchItem, len(result.Items))
	for i, item := range result.Items {
		items[i] = jsonBatchItem{
			Sprint:     item.Sprint,
			Items:      item.Items,
			Efficiency: item.Efficiency,
		}
		if item.Err != nil {
			items[i].Error = item.Err.Error()
		}
	}

	payload := struct {
		Items      []jsonBatchItem `json:"items"`
		Succeeded  int             `json:"succeeded"`
		Failed     int             `json:"failed"`
		TotalItems int             `json:"total_items"`
		DurationMs int64           `json:"duration_ms"`
	}{
		Items:      items,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		TotalItems: result.TotalItems,
		DurationMs: result.Duration.Milliseconds(),
	}
	return writeJSON(w, payload)
}

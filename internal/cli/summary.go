package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"attributioncli/internal/exporter"
	"attributioncli/internal/operations"
)

// writeSummary prints the artifact paths followed by the per-source metrics
func writeSummary(w io.Writer, result *operations.Result) error {
	if _, err := fmt.Fprintln(w, "Pipeline completed. Outputs saved at:"); err != nil {
		return err
	}
	for _, key := range result.Artifacts.Keys() {
		if _, err := fmt.Fprintf(w, "  %-14s %s\n", key+":", result.Artifacts[key]); err != nil {
			return err
		}
	}

	if result.Model == nil || len(result.Model.Metrics) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	table := exporter.MetricsTable(result.Model.Metrics)
	return writeTable(w, table.Headers, table.Records)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
			return err
		}
	}
	for i, row := range rows {
		if len(headers) > 0 && len(row) != len(headers) {
			return fmt.Errorf("table row %d has %d columns, expected %d", i, len(row), len(headers))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

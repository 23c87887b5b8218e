package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
)

// chartSpec describes one native column chart over the metrics sheet
type chartSpec struct {
	column string // data column letter on the metrics sheet
	title  string
	anchor string
}

var metricsCharts = []chartSpec{
	{column: "B", title: "Acquisition Volume by UTM Source", anchor: "I2"},
	{column: "F", title: "Engagement Rate by UTM Source", anchor: "I18"},
	{column: "G", title: "Retention Rate by UTM Source", anchor: "I34"},
}

// WorkbookWriter writes the model tables into one .xlsx workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write creates path with one sheet per table, in order. When a metrics table
// is present it also gets native column charts for volume and both rates.
func (w *WorkbookWriter) Write(path string, tables ...Table) (err error) {
	if len(tables) == 0 {
		return fmt.Errorf("workbook needs at least one table")
	}

	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), table.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", table.Name, err)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", table.Name, err)
		}

		if err := writeSheet(f, table); err != nil {
			return err
		}

		if table.Name == TableMetrics && len(table.Records) > 0 {
			if err := addMetricsCharts(f, table.Name, len(table.Records)); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Debug("Wrote workbook",
		slog.String("path", path),
		slog.Int("sheets", len(tables)))
	return nil
}

// writeSheet writes the header and records of table into its sheet
func writeSheet(f *excelize.File, table Table) error {
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", table.Name, err)
	}

	numeric := make(map[int]bool, len(table.Numeric))
	for _, col := range table.Numeric {
		numeric[col] = true
	}

	for r, record := range table.Records {
		row := make([]interface{}, len(record))
		for c, value := range record {
			row[c] = cellValue(value, numeric[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(table.Name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, table.Name, err)
		}
	}

	return nil
}

// cellValue returns a number for numeric columns so formulas and charts work
func cellValue(value string, numeric bool) interface{} {
	if !numeric || value == "" {
		return value
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func addMetricsCharts(f *excelize.File, sheet string, rows int) error {
	last := rows + 1
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last)

	for _, spec := range metricsCharts {
		chart := &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$%s$1", sheet, spec.column),
				Categories: categories,
				Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, spec.column, spec.column, last),
			}},
			Title:  []excelize.RichTextRun{{Text: spec.title}},
			Legend: excelize.ChartLegend{Position: "none"},
		}
		if err := f.AddChart(sheet, spec.anchor, chart); err != nil {
			return fmt.Errorf("failed to add chart %q: %w", spec.title, err)
		}
	}
	return nil
}

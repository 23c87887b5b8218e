// Package exporter renders the attribution model as tables and writes them out.
//
// Tables are rendered once (MetricsTable, UsersTable, CategoryMixTable and the
// raw projections) and then handed to the writers:
//
// CSVWriter: atomic CSV writes with optional UTF-8 BOM for Excel compatibility.
//
// WorkbookWriter: one .xlsx workbook with a sheet per table and native column
// charts on the metrics sheet.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(outputsDir, logger)
//	err := writer.WriteTable("per_utm_metrics.csv", exporter.MetricsTable(metrics), false)
package exporter

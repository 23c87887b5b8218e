// Package charts renders the per-source metrics as PNG bar charts.
package charts

package charts

import (
	"context"
	"log/slog"

	"attributioncli/pkg/contracts/domain"
)

// Files are the destinations of the three metrics charts
type Files struct {
	Acquisition string
	Engagement  string
	Retention   string
}

// AcquisitionChart plots acquisition volume per source in metrics order
func AcquisitionChart(metrics []domain.SourceMetrics) BarChart {
	return BarChart{
		Title:  "Acquisition Volume by UTM Source",
		YLabel: "Contacts",
		Bars:   bars(metrics, func(m domain.SourceMetrics) float64 { return float64(m.AcquisitionVolume) }),
	}
}

// EngagementChart plots engagement rate per source on a 0..1 axis
func EngagementChart(metrics []domain.SourceMetrics) BarChart {
	return BarChart{
		Title:    "Engagement Rate by UTM Source",
		YLabel:   "Engagement rate",
		Bars:     bars(metrics, func(m domain.SourceMetrics) float64 { return m.EngagementRate }),
		Max:      1,
		Decimals: 3,
	}
}

// RetentionChart plots retention rate per source on a 0..1 axis
func RetentionChart(metrics []domain.SourceMetrics) BarChart {
	return BarChart{
		Title:    "Retention Rate by UTM Source",
		YLabel:   "Retention rate",
		Bars:     bars(metrics, func(m domain.SourceMetrics) float64 { return m.RetentionRate }),
		Max:      1,
		Decimals: 3,
	}
}

func bars(metrics []domain.SourceMetrics, value func(domain.SourceMetrics) float64) []Bar {
	out := make([]Bar, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, Bar{Label: m.Source, Value: value(m)})
	}
	return out
}

// Renderer writes the metrics charts as PNG files
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a chart renderer
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// WriteMetricsCharts renders the acquisition, engagement and retention charts
func (r *Renderer) WriteMetricsCharts(ctx context.Context, files Files, metrics []domain.SourceMetrics) error {
	jobs := []struct {
		path  string
		chart BarChart
	}{
		{files.Acquisition, AcquisitionChart(metrics)},
		{files.Engagement, EngagementChart(metrics)},
		{files.Retention, RetentionChart(metrics)},
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := WriteFile(job.path, job.chart); err != nil {
			return err
		}
		r.logger.DebugContext(ctx, "Wrote chart",
			slog.String("path", job.path),
			slog.Int("bars", len(job.chart.Bars)))
	}
	return nil
}

package kpi

import (
	"sort"

	"attributioncli/pkg/contracts/domain"
)

// sourceAccumulator collects one source's rollup rows
type sourceAccumulator struct {
	contacts    map[string]struct{}
	engaged     int
	retained    int
	totalEvents []int
}

// MetricsPerSource groups rollup rows by source and derives acquisition KPIs.
// Rows are ordered by descending acquisition volume; equal volumes keep ascending
// source order.
func MetricsPerSource(users []domain.UserRollup) []domain.SourceMetrics {
	groups := make(map[string]*sourceAccumulator)
	for _, u := range users {
		acc, ok := groups[u.Source]
		if !ok {
			acc = &sourceAccumulator{contacts: make(map[string]struct{})}
			groups[u.Source] = acc
		}
		acc.contacts[u.ContactID] = struct{}{}
		if u.Engaged {
			acc.engaged++
		}
		if u.Retained {
			acc.retained++
		}
		acc.totalEvents = append(acc.totalEvents, u.TotalEvents)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	metrics := make([]domain.SourceMetrics, 0, len(labels))
	for _, label := range labels {
		acc := groups[label]
		volume := len(acc.contacts)
		metrics = append(metrics, domain.SourceMetrics{
			Source:            label,
			AcquisitionVolume: volume,
			EngagedUsers:      acc.engaged,
			RetainedUsers:     acc.retained,
			AvgEventsPerUser:  Mean(acc.totalEvents),
			EngagementRate:    Ratio(acc.engaged, volume),
			RetentionRate:     Ratio(acc.retained, volume),
		})
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].AcquisitionVolume > metrics[j].AcquisitionVolume
	})

	return metrics
}

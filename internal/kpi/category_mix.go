package kpi

import (
	"sort"

	"attributioncli/internal/modeling"
	"attributioncli/pkg/contracts/domain"
)

type mixKey struct {
	source   string
	category string
}

// CategoryMix counts post-acquisition events per (source, category) and each
// category's share of its source's total. Events without a category are not
// counted. Rows are ordered by source, then category.
func CategoryMix(events []domain.EnrichedEvent, attribution []domain.AttributionSource) []domain.CategoryMix {
	sources := modeling.SourceIndex(attribution)

	counts := make(map[mixKey]int)
	totals := make(map[string]int)
	for _, e := range events {
		if !e.IsAfterAcquisition || !e.Category.Valid {
			continue
		}
		source := domain.UnknownSource
		if e.ContactID.Valid {
			source = modeling.ResolveSource(sources, e.ContactID.String)
		}

		counts[mixKey{source: source, category: e.Category.String}]++
		totals[source]++
	}

	keys := make([]mixKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		return keys[i].category < keys[j].category
	})

	mix := make([]domain.CategoryMix, 0, len(keys))
	for _, k := range keys {
		mix = append(mix, domain.CategoryMix{
			Source:      k.source,
			Category:    k.category,
			Events:      counts[k],
			TotalEvents: totals[k.source],
			Share:       Ratio(counts[k], totals[k.source]),
		})
	}

	return mix
}

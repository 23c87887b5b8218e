package modeling

import (
	"attributioncli/pkg/contracts/domain"
)

// Thresholds for the per-contact flags
const (
	EngagedMinEvents = 1
	RetainedMinDays  = 2
)

// RollupResult is the output of Rollup
type RollupResult struct {
	// Users has one row per contact, in contact order
	Users []domain.UserRollup
	// Events has one row per event, in event order
	Events []domain.EnrichedEvent
	// Orphans counts events whose contact id is missing or not a known contact
	Orphans int
}

// contactActivity accumulates one contact's events
type contactActivity struct {
	eventIDs       map[string]struct{}
	eventsAfterAcq int
	firstEventAt   domain.NullTime
	days           map[string]struct{}
}

func newContactActivity() *contactActivity {
	return &contactActivity{
		eventIDs: make(map[string]struct{}),
		days:     make(map[string]struct{}),
	}
}

func (a *contactActivity) add(event domain.EnrichedEvent) {
	a.eventIDs[event.ID] = struct{}{}
	if event.IsAfterAcquisition {
		a.eventsAfterAcq++
	}
	if !event.CreatedAt.Valid {
		return
	}
	if !a.firstEventAt.Valid || event.CreatedAt.Time.Before(a.firstEventAt.Time) {
		a.firstEventAt = event.CreatedAt
	}
	if day, ok := event.CreatedAt.Date(); ok {
		a.days[day] = struct{}{}
	}
}

// EnrichEvents joins each event to its contact's created-at and classifies it.
// An event counts as after acquisition when its timestamp is at or after the
// contact's; a missing timestamp on either side never counts.
func EnrichEvents(contacts []domain.Contact, events []domain.Event) ([]domain.EnrichedEvent, int) {
	createdAt := make(map[string]domain.NullTime, len(contacts))
	for _, c := range contacts {
		createdAt[c.ID] = c.CreatedAt
	}

	orphans := 0
	enriched := make([]domain.EnrichedEvent, 0, len(events))
	for _, event := range events {
		var acquired domain.NullTime
		known := false
		if event.ContactID.Valid {
			acquired, known = createdAt[event.ContactID.String]
		}
		if !known {
			orphans++
		}

		enriched = append(enriched, domain.EnrichedEvent{
			Event:              event,
			ContactCreatedAt:   acquired,
			IsAfterAcquisition: event.CreatedAt.AtOrAfter(acquired),
		})
	}

	return enriched, orphans
}

// Rollup builds the per-contact engagement summary. Every contact gets exactly one
// row; contacts without attribution fall back to "unknown" and contacts without
// events get zero counts.
func Rollup(contacts []domain.Contact, attribution []domain.AttributionSource, events []domain.Event) RollupResult {
	sources := SourceIndex(attribution)
	enriched, orphans := EnrichEvents(contacts, events)

	activity := make(map[string]*contactActivity)
	for _, event := range enriched {
		if !event.ContactID.Valid {
			continue
		}
		acc, ok := activity[event.ContactID.String]
		if !ok {
			acc = newContactActivity()
			activity[event.ContactID.String] = acc
		}
		acc.add(event)
	}

	users := make([]domain.UserRollup, 0, len(contacts))
	for _, c := range contacts {
		user := domain.UserRollup{
			ContactID: c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Source:    ResolveSource(sources, c.ID),
		}
		if acc, ok := activity[c.ID]; ok {
			user.TotalEvents = len(acc.eventIDs)
			user.EventsAfterAcq = acc.eventsAfterAcq
			user.FirstEventAt = acc.firstEventAt
			user.DistinctEventDays = len(acc.days)
		}
		user.Engaged = user.EventsAfterAcq >= EngagedMinEvents
		user.Retained = user.DistinctEventDays >= RetainedMinDays

		users = append(users, user)
	}

	return RollupResult{Users: users, Events: enriched, Orphans: orphans}
}

// SourceIndex maps contact id to normalized source
func SourceIndex(attribution []domain.AttributionSource) map[string]string {
	index := make(map[string]string, len(attribution))
	for _, a := range attribution {
		if _, ok := index[a.ContactID]; !ok {
			index[a.ContactID] = a.Source
		}
	}
	return index
}

// ResolveSource returns the contact's source or "unknown"
func ResolveSource(index map[string]string, contactID string) string {
	if source, ok := index[contactID]; ok {
		return source
	}
	return domain.UnknownSource
}

package modeling

import (
	"strings"

	"attributioncli/pkg/contracts/domain"
)

// BuildContacts projects one Contact per distinct contact id, keeping the first
// occurrence in row order. Rows without a contact id are skipped.
func BuildContacts(rows []domain.RawRow) []domain.Contact {
	seen := make(map[string]struct{}, len(rows))
	contacts := make([]domain.Contact, 0)

	for _, row := range rows {
		if !row.ContactID.Valid {
			continue
		}
		id := row.ContactID.String
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		contacts = append(contacts, domain.Contact{
			ID:        id,
			CreatedAt: row.ContactCreated,
			UpdatedAt: row.ContactUpdated,
		})
	}

	return contacts
}

// ExtractAttribution returns the utm_source of each contact. Only rows whose field
// title is exactly "utm_source" and whose value is present count; the first such row
// per contact wins and its value is trimmed and lower-cased.
func ExtractAttribution(rows []domain.RawRow) []domain.AttributionSource {
	seen := make(map[string]struct{})
	sources := make([]domain.AttributionSource, 0)

	for _, row := range rows {
		if !row.ContactID.Valid || !row.FieldValue.Valid {
			continue
		}
		if row.FieldTitle.Or("") != domain.UTMSourceField {
			continue
		}
		id := row.ContactID.String
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		sources = append(sources, domain.AttributionSource{
			ContactID: id,
			Source:    NormalizeSource(row.FieldValue.String),
		})
	}

	return sources
}

// NormalizeSource trims and lower-cases a source label
func NormalizeSource(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// BuildEvents projects every row that carries an event id, in row order.
// Events are not deduplicated and need not reference a known contact.
func BuildEvents(rows []domain.RawRow) []domain.Event {
	events := make([]domain.Event, 0)

	for _, row := range rows {
		if !row.EventID.Valid {
			continue
		}
		events = append(events, domain.Event{
			ContactID: row.ContactID,
			ID:        row.EventID.String,
			Category:  row.EventCategory,
			CreatedAt: row.EventCreated,
			Hash:      row.EventHash,
		})
	}

	return events
}

package domain

// Source column names of the flat contact export. Matched exactly after trimming.
const (
	ColumnContactID      = "Contact ID"
	ColumnContactCreated = "Contact Create date"
	ColumnContactUpdated = "Contact Update date"
	ColumnFieldTitle     = "Fields Title"
	ColumnFieldValue     = "Field Value"
	ColumnEventID        = "Events ID"
	ColumnEventCategory  = "Events Category"
	ColumnEventCreated   = "Events Create date"
	ColumnEventHash      = "Events Hash"
)

// UTMSourceField is the field title whose value carries the acquisition source.
const UTMSourceField = "utm_source"

// UnknownSource labels contacts without an attribution value.
const UnknownSource = "unknown"

// RawRow is one record of the flat export after preprocessing.
// A row may describe a contact field, an event, or both.
type RawRow struct {
	ContactID      NullString `json:"contact_id"`
	ContactCreated NullTime   `json:"contact_created_at"`
	ContactUpdated NullTime   `json:"contact_updated_at"`
	FieldTitle     NullString `json:"field_title"`
	FieldValue     NullString `json:"field_value"`
	EventID        NullString `json:"event_id"`
	EventCategory  NullString `json:"event_category"`
	EventCreated   NullTime   `json:"event_created_at"`
	EventHash      NullString `json:"event_hash"`
}

// Contact is unique by ID.
type Contact struct {
	ID        string   `json:"contact_id" db:"contact_id"`
	CreatedAt NullTime `json:"contact_created_at" db:"contact_created_at"`
	UpdatedAt NullTime `json:"contact_updated_at" db:"contact_updated_at"`
}

// AttributionSource holds the normalized UTM source of one contact.
type AttributionSource struct {
	ContactID string `json:"contact_id" db:"contact_id"`
	Source    string `json:"utm_source" db:"utm_source"`
}

// Event is a single contact event. ContactID is not checked against the contacts table.
type Event struct {
	ContactID NullString `json:"contact_id" db:"contact_id"`
	ID        string     `json:"event_id" db:"event_id"`
	Category  NullString `json:"event_category" db:"event_category"`
	CreatedAt NullTime   `json:"event_created_at" db:"event_created_at"`
	Hash      NullString `json:"event_hash" db:"event_hash"`
}

// EnrichedEvent is an Event joined to its contact's acquisition timestamp.
type EnrichedEvent struct {
	Event
	ContactCreatedAt   NullTime `json:"contact_created_at"`
	IsAfterAcquisition bool     `json:"is_after_acq"`
}

// UserRollup is the per-contact engagement summary.
type UserRollup struct {
	ContactID         string   `json:"contact_id" db:"contact_id"`
	CreatedAt         NullTime `json:"contact_created_at" db:"contact_created_at"`
	UpdatedAt         NullTime `json:"contact_updated_at" db:"contact_updated_at"`
	Source            string   `json:"utm_source" db:"utm_source"`
	TotalEvents       int      `json:"total_events" db:"total_events"`
	EventsAfterAcq    int      `json:"events_after_acq" db:"events_after_acq"`
	FirstEventAt      NullTime `json:"first_event_at" db:"first_event_at"`
	DistinctEventDays int      `json:"distinct_event_days" db:"distinct_event_days"`
	Engaged           bool     `json:"engaged" db:"engaged"`
	Retained          bool     `json:"retained" db:"retained"`
}

// SourceMetrics holds the acquisition KPIs of one UTM source.
type SourceMetrics struct {
	Source            string  `json:"utm_source" db:"utm_source"`
	AcquisitionVolume int     `json:"acquisition_volume" db:"acquisition_volume"`
	EngagedUsers      int     `json:"engaged_users" db:"engaged_users"`
	RetainedUsers     int     `json:"retention_users" db:"retention_users"`
	AvgEventsPerUser  float64 `json:"avg_events_per_user" db:"avg_events_per_user"`
	EngagementRate    float64 `json:"engagement_rate" db:"engagement_rate"`
	RetentionRate     float64 `json:"retention_rate" db:"retention_rate"`
}

// CategoryMix is the share of one event category among a source's post-acquisition events.
type CategoryMix struct {
	Source      string  `json:"utm_source" db:"utm_source"`
	Category    string  `json:"event_category" db:"event_category"`
	Events      int     `json:"events" db:"events"`
	TotalEvents int     `json:"total_events" db:"total_events"`
	Share       float64 `json:"share" db:"share"`
}

// AttributionModel bundles every table one pipeline run produces.
type AttributionModel struct {
	Contacts       []Contact           `json:"contacts"`
	Attribution    []AttributionSource `json:"utm"`
	Events         []Event             `json:"events"`
	EnrichedEvents []EnrichedEvent     `json:"events_after_acq"`
	Users          []UserRollup        `json:"users"`
	Metrics        []SourceMetrics     `json:"metrics"`
	CategoryMix    []CategoryMix       `json:"cat_mix"`
}

package domain

import (
	"encoding/json"
	"time"
)

// NullString is a text cell that may be missing.
// The zero value is missing.
type NullString struct {
	String string
	Valid  bool
}

// NewNullString returns a present NullString holding s.
func NewNullString(s string) NullString {
	return NullString{String: s, Valid: true}
}

// Or returns the value when present and fallback otherwise.
func (n NullString) Or(fallback string) string {
	if !n.Valid {
		return fallback
	}
	return n.String
}

// MarshalJSON encodes a missing value as null.
func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

// NullTime is a timestamp cell that may be missing.
// The zero value is missing.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// NewNullTime returns a present NullTime holding t.
func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

// AtOrAfter reports whether n is at or after other.
// A comparison involving a missing value is false.
func (n NullTime) AtOrAfter(other NullTime) bool {
	if !n.Valid || !other.Valid {
		return false
	}
	return !n.Time.Before(other.Time)
}

// Date returns the calendar date of a present timestamp as YYYY-MM-DD,
// read in the timestamp's own zone.
func (n NullTime) Date() (string, bool) {
	if !n.Valid {
		return "", false
	}
	return n.Time.Format("2006-01-02"), true
}

// MarshalJSON encodes a missing value as null.
func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

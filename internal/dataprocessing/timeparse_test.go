package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attributioncli/pkg/contracts/domain"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{"2024-01-01 10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-01T10:00:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-01T12:00:00+02:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-01 10:00:00.250 UTC", time.Date(2024, 1, 1, 10, 0, 0, 250_000_000, time.UTC), true},
		{"2024-01-01 10:00:00+00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024/01/15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"  2024-03-05 08:30  ", time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"2024-13-45", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
			}
		})
	}
}

func TestParseTimestamp_KeepsOffset(t *testing.T) {
	got, ok := ParseTimestamp("2024-01-05T23:30:00-05:00")
	assert.True(t, ok)
	assert.True(t, time.Date(2024, 1, 6, 4, 30, 0, 0, time.UTC).Equal(got))

	_, offset := got.Zone()
	assert.Equal(t, -5*3600, offset)

	day, ok := domain.NewNullTime(got).Date()
	assert.True(t, ok)
	assert.Equal(t, "2024-01-05", day)

	naive, ok := ParseTimestamp("2024-01-05 23:30")
	assert.True(t, ok)
	assert.Equal(t, time.UTC, naive.Location())
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(MinTimestamp))
	assert.True(t, InRange(time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, InRange(MaxTimestamp))
	assert.False(t, InRange(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, InRange(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
}

package daytime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{name: "morning", in: "09:00", want: 540},
		{name: "single digit hour", in: "9:05", want: 545},
		{name: "midnight", in: "0:00", want: 0},
		{name: "end of day", in: "23:59", want: 1439},
		{name: "no colon", in: "900", wantErr: true},
		{name: "two colons", in: "9:00:00", wantErr: true},
		{name: "letters", in: "nine:00", wantErr: true},
		{name: "hour out of range", in: "24:00", wantErr: true},
		{name: "minute out of range", in: "9:75", wantErr: true},
		{name: "negative hour", in: "-1:30", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Decode(Encode(t)) equals t after zero-padding normalization.
	for _, in := range []string{"00:00", "9:05", "09:05", "13:30", "23:59"} {
		m, err := Encode(in)
		require.NoError(t, err)
		normalized, err := Encode(Decode(m))
		require.NoError(t, err)
		assert.Equal(t, m, normalized, "round trip for %q", in)
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "09:00", Decode(540))
	assert.Equal(t, "00:00", Decode(0))
	assert.Equal(t, "23:59", Decode(1439))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1h 0m", FormatDuration(540, 600))
	assert.Equal(t, "1h 30m", FormatDuration(540, 630))
	assert.Equal(t, "0h 45m", FormatDuration(600, 645))
}

func TestDayNormalization(t *testing.T) {
	// A timestamp late in the UTC day must key to the same calendar date as
	// its midnight.
	late := time.Date(2025, 6, 9, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-09", DateKey(late))
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), DayUTC(late))
	assert.Equal(t, "Monday", DayName(late))

	// Non-UTC wall clocks normalize through UTC, never the local calendar.
	offset := time.FixedZone("UTC+6", 6*3600)
	early := time.Date(2025, 6, 10, 2, 0, 0, 0, offset) // 2025-06-09T20:00Z
	assert.Equal(t, "2025-06-09", DateKey(early))
}

func TestOccurrenceKey(t *testing.T) {
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "slot-1_2025-06-09", OccurrenceKey("slot-1", day))
}

func TestAtMinute(t *testing.T) {
	day := time.Date(2025, 6, 9, 17, 30, 0, 0, time.UTC) // time-of-day ignored
	got := AtMinute(day, 545)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 5, 0, 0, time.UTC), got)
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2025-06-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDate("09/06/2025")
	assert.Error(t, err)
}

func TestValidDay(t *testing.T) {
	assert.True(t, ValidDay("Monday"))
	assert.True(t, ValidDay("Sunday"))
	assert.False(t, ValidDay("monday"))
	assert.False(t, ValidDay("Funday"))
}

package expense

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.February, 28), d)

	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2025, time.March, 1, 8, 0, 0, 0, zone)
	assert.Equal(t, NewDate(2025, time.March, 1), DateOf(instant))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.December, 31)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-31"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, time.January, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-09", d.String())

	require.NoError(t, d.Scan([]byte("2025-01-10T00:00:00Z")))
	assert.Equal(t, "2025-01-10", d.String())

	assert.Error(t, d.Scan(42))
}

func TestDate_Ordering(t *testing.T) {
	a := NewDate(2025, time.January, 1)
	b := a.AddDays(1)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(NewDate(2025, time.January, 1)))
}

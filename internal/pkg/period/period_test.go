package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-3-5", "05/03/2024", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestParseMonth(t *testing.T) {
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, want, m)

	m, err = ParseMonth("2024-02-17")
	require.NoError(t, err)
	assert.Equal(t, want, m)

	_, err = ParseMonth("Feb 2024")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestMonthBounds(t *testing.T) {
	leap := time.Date(2024, 2, 14, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), MonthStart(leap))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), MonthEnd(leap))

	dec := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), MonthEnd(dec))
}

func TestIsSunday(t *testing.T) {
	// 2024-06-02 is a Sunday.
	sunday := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsSunday(sunday))
	for i := 1; i <= 6; i++ {
		assert.False(t, IsSunday(sunday.AddDate(0, 0, i)), sunday.AddDate(0, 0, i).Weekday().String())
	}

	// Late Saturday in UTC is still Saturday, even if a local zone has rolled over.
	jakarta := time.FixedZone("WIB", 7*3600)
	satUTC := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC).In(jakarta)
	assert.Equal(t, time.Sunday, satUTC.Weekday())
	assert.False(t, IsSunday(satUTC))
}

func TestWithin(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	assert.True(t, Within(start, start, end))
	assert.True(t, Within(end.Add(18*time.Hour), start, end))
	assert.False(t, Within(start.AddDate(0, 0, -1), start, end))
	assert.False(t, Within(end.AddDate(0, 0, 1), start, end))
}

func TestFormat(t *testing.T) {
	d := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-07-09", FormatDate(d))
	assert.Equal(t, "2024-07", FormatMonth(d))
}

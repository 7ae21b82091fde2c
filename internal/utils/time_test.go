package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2026-08-29", "13:45")
	require.NoError(t, err)
	assert.Equal(t, 13, ts.Hour())
	assert.Equal(t, 45, ts.Minute())
}

func TestParseTimestampIgnoresSeconds(t *testing.T) {
	ts, err := ParseTimestamp("2026-08-29", "13:45:30")
	require.NoError(t, err)
	assert.Equal(t, 45, ts.Minute())
	assert.Equal(t, 0, ts.Second())
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("2026-08-29", "25:99")
	assert.Error(t, err)
	_, err = ParseTimestamp("29/08/2026", "12:00")
	assert.Error(t, err)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-08-29"))
	assert.False(t, ValidDate("2026-13-01"))
	assert.False(t, ValidDate("29-08-2026"))
	assert.False(t, ValidDate(""))
}

func TestDaysAgoOrdering(t *testing.T) {
	assert.Less(t, DaysAgo(7), Today())
	assert.Equal(t, Today(), DaysAgo(0))
}

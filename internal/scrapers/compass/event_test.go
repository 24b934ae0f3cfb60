package compass

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.Nil(t, err)

	testCases := []struct {
		value    string
		expected time.Time
	}{
		{
			value:    "2025-01-06T09:30:00",
			expected: time.Date(2025, time.January, 6, 9, 30, 0, 0, sydney),
		},
		{
			value:    "2025-01-06 09:30:00",
			expected: time.Date(2025, time.January, 6, 9, 30, 0, 0, sydney),
		},
		{
			value:    "2025-01-06",
			expected: time.Date(2025, time.January, 6, 0, 0, 0, 0, sydney),
		},
		{
			value:    "2025-01-05T22:30:00Z",
			expected: time.Date(2025, time.January, 5, 22, 30, 0, 0, time.UTC),
		},
		{
			value:    "/Date(1736116200000+1100)/",
			expected: time.Date(2025, time.January, 5, 22, 30, 0, 0, time.UTC),
		},
		{
			value:    "/Date(1736116200000)/",
			expected: time.Date(2025, time.January, 5, 22, 30, 0, 0, time.UTC),
		},
	}

	for _, test := range testCases {
		parsed, err := ParseTimestamp(test.value, sydney)
		require.Nil(t, err, test.value)
		require.True(t, test.expected.Equal(parsed), "%s: expected %s got %s", test.value, test.expected, parsed)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, value := range []string{"", "  ", "tomorrow", "06/01/2025", "/Date(abc)/"} {
		_, err := ParseTimestamp(value, time.UTC)
		require.NotNil(t, err, value)
	}
}

func TestEventAccessors(t *testing.T) {
	event := Event{
		"id":              json.Number("1042"),
		"longTitle":       "9:00: Year 3 Assembly",
		"subjectTitle":    "ASM",
		"allDay":          false,
		"rollMarked":      "yes",
		"description":     "<p>Bring a hat</p>",
		"locations":       []any{map[string]any{"name": "Hall"}, "junk", map[string]any{"name": ""}, map[string]any{"name": "Oval"}},
		"managers":        "not a list",
		"start":           "2025-01-06T09:00:00",
		"finish":          json.Number("12"),
		"unrelatedNumber": 3.5,
	}

	require.Equal(t, "1042", event.Id())
	require.Equal(t, "9:00: Year 3 Assembly", event.Title())
	require.Equal(t, "ASM", event.Subject())
	require.False(t, event.AllDay())
	require.False(t, event.RollMarked())
	require.Equal(t, "<p>Bring a hat</p>", event.Description())
	require.Equal(t, []string{"Hall", "Oval"}, event.Locations())
	require.Nil(t, event.Managers())

	start, err := event.Start(time.UTC)
	require.Nil(t, err)
	require.Equal(t, time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC), start)

	_, err = event.Finish(time.UTC)
	require.NotNil(t, err)

	event["longTitleWithoutTime"] = "Year 3 Assembly"
	require.Equal(t, "Year 3 Assembly", event.Title())

	require.Equal(t, "", Event{}.Id())
}

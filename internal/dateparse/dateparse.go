// Package dateparse turns the date flags of the cli into the YYYY-MM-DD dates
// the portal expects.
package dateparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

const dateLayout = "2006-01-02"

// Parse accepts RFC3339 timestamps, YYYY-MM-DD dates and natural language
// ("tomorrow", "next friday", "in 2 weeks"). Relative expressions are resolved
// against ref and lean towards the future. If ref is zero time.Now() is used.
func Parse(s string, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if ref.IsZero() {
		ref = time.Now()
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.ParseInLocation(dateLayout, s, ref.Location())
	if err == nil {
		return t, nil
	}

	t, err = naturaldate.Parse(s, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse date %q: %w", s, err)
	}
	// naturaldate returns ref itself for input it does not understand
	if t.Equal(ref) && !isNow(s) {
		return time.Time{}, fmt.Errorf("could not parse date %q", s)
	}
	return t, nil
}

func isNow(s string) bool {
	switch strings.ToLower(s) {
	case "now", "today":
		return true
	}
	return false
}

// FormatDate formats t as YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// StartOfDay returns midnight of the day t falls on.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

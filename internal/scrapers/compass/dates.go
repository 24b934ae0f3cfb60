package compass

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// parseDateRange validates a YYYY-MM-DD date range, the returned times are
// midnight UTC of each day.
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q: %w", ErrInvalidDate, startDate, err)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q: %w", ErrInvalidDate, endDate, err)
	}
	return start, end, nil
}

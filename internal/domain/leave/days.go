package leave

import (
	"fmt"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/validator"
)

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end string) (int, error) {
	s, ok := validator.IsValidDate(start)
	if !ok {
		return 0, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
	}
	e, ok := validator.IsValidDate(end)
	if !ok {
		return 0, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
	}
	return InclusiveDaysBetween(s, e)
}

// InclusiveDaysBetween works on calendar dates; the clock part is ignored.
func InclusiveDaysBetween(start, end time.Time) (int, error) {
	s := dateOnly(start)
	e := dateOnly(end)
	if e.Before(s) {
		return 0, ErrInvalidDateRange
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

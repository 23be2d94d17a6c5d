package orders

import "time"

// wtimeLayout is the wire format for window bounds: ISO-8601 UTC with
// microsecond precision and a Z suffix.
const wtimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Window is the UTC-normalized time range bounding an order fetch.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the window covering the calendar day containing now
// in loc: local midnight through local 23:59:59.999999, both held as
// UTC instants.
func DayWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999000, loc)
	return Window{Start: start.UTC(), End: end.UTC()}
}

// StartWtime returns the window start in wire format.
func (w Window) StartWtime() string {
	return w.Start.UTC().Format(wtimeLayout)
}

// EndWtime returns the window end in wire format.
func (w Window) EndWtime() string {
	return w.End.UTC().Format(wtimeLayout)
}

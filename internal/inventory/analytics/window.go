package analytics

import "time"

// Window is an inclusive time range. The zero Window matches everything.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateWindow builds a window from calendar dates: it opens at the start of
// the start day and closes at the last instant of the end day.
func NewDateWindow(start, end time.Time) Window {
	return Window{
		Start: StartOfDay(start),
		End:   StartOfDay(end).AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

// LastDays returns the window covering the n calendar days ending on now.
func LastDays(now time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	return NewDateWindow(now.AddDate(0, 0, -(n - 1)), now)
}

func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t lies in [Start, End]. A zero bound is open.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// WindowFilter keeps the items whose date falls inside w, preserving order.
func WindowFilter[T any](items []T, dateOf func(T) time.Time, w Window) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if w.Contains(dateOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

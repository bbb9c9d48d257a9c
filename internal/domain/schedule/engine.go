package schedule

import (
	"sort"
	"time"

	"photosession/internal/pkg/apperror"
)

const (
	SourceOverride = "override"
	SourceWeekly   = "weekly"
)

// Resolution is the working-hours view of one date.
type Resolution struct {
	Date        string     `json:"date"`
	Windows     []TimeSlot `json:"windows"`
	Unavailable bool       `json:"unavailable"`
	Reason      string     `json:"reason,omitempty"`
	Source      string     `json:"source"`
}

// ResolveWorkingHours picks the override for date when one exists and falls
// back to the weekly entry otherwise.
func ResolveWorkingHours(s *PhotographerSchedule, date time.Time) Resolution {
	key := date.Format(DateLayout)
	res := Resolution{Date: key}

	if o, ok := s.Override(key); ok {
		res.Source = SourceOverride
		if o.Unavailable {
			res.Unavailable = true
			res.Reason = o.Reason
			if res.Reason == "" {
				res.Reason = "unavailable"
			}
			return res
		}
		res.Windows = mergeSlots(o.Slots)
		return res
	}

	res.Source = SourceWeekly
	day, ok := s.Weekly[WeekdayKey(date.Weekday())]
	if !ok || !day.AcceptsBookings {
		res.Unavailable = true
		res.Reason = "not accepting bookings on " + WeekdayKey(date.Weekday())
		return res
	}
	res.Windows = mergeSlots(day.Slots)
	return res
}

// FreeSlots subtracts busy intervals from every window and returns the free
// remainders of at least duration minutes, ascending.
func FreeSlots(windows, busy []TimeSlot, duration int) []TimeSlot {
	out := make([]TimeSlot, 0)
	if duration <= 0 {
		return out
	}
	merged := mergeSlots(busy)
	for _, w := range mergeSlots(windows) {
		for _, free := range subtractBusy(w, merged) {
			if free.Duration() >= duration {
				out = append(out, free)
			}
		}
	}
	return out
}

// CheckSlot validates candidate against a resolution and the occupied
// intervals of the day.
func CheckSlot(res Resolution, busy []TimeSlot, candidate TimeSlot) error {
	if res.Unavailable {
		return apperror.Wrapf(ErrDateUnavailable, "%s: %s", res.Date, res.Reason)
	}
	inside := false
	for _, w := range res.Windows {
		if w.Contains(candidate) {
			inside = true
			break
		}
	}
	if !inside {
		return apperror.Wrapf(ErrOutsideWorkingHours, "%s on %s", candidate, res.Date)
	}
	for _, b := range busy {
		if b.Overlaps(candidate) {
			return apperror.Wrapf(ErrSlotUnavailable, "%s overlaps booking at %s", candidate, b)
		}
	}
	return nil
}

func subtractBusy(window TimeSlot, busy []TimeSlot) []TimeSlot {
	cur := window.Start
	out := make([]TimeSlot, 0, len(busy)+1)
	for _, b := range busy {
		if b.End <= window.Start || b.Start >= window.End {
			continue
		}
		if b.Start > cur {
			out = append(out, TimeSlot{Start: cur, End: b.Start})
		}
		if b.End > cur {
			cur = b.End
		}
	}
	if cur < window.End {
		out = append(out, TimeSlot{Start: cur, End: window.End})
	}
	return out
}

// mergeSlots sorts slots and joins overlapping or touching ones. Invalid
// slots are dropped.
func mergeSlots(slots []TimeSlot) []TimeSlot {
	valid := make([]TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].Start < valid[j].Start })

	merged := make([]TimeSlot, 0, len(valid))
	for _, s := range valid {
		if n := len(merged); n > 0 && s.Start <= merged[n-1].End {
			if s.End > merged[n-1].End {
				merged[n-1].End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

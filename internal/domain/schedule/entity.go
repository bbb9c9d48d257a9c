package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"photosession/internal/domain/audit"
)

const DateLayout = "2006-01-02"

// Clock is a time of day in minutes after midnight. 24:00 is allowed as an
// end bound.
type Clock int

const EndOfDay Clock = 24 * 60

func ParseClock(s string) (Clock, error) {
	var h, m int
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	c := Clock(h*60 + m)
	if h < 0 || m < 0 || m > 59 || c > EndOfDay {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return c, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// TimeSlot is the half-open interval [Start, End).
type TimeSlot struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

func (s TimeSlot) Duration() int { return int(s.End - s.Start) }

func (s TimeSlot) Valid() bool { return s.Start >= 0 && s.End <= EndOfDay && s.Start < s.End }

func (s TimeSlot) Overlaps(o TimeSlot) bool { return s.Start < o.End && s.End > o.Start }

func (s TimeSlot) Contains(o TimeSlot) bool { return s.Start <= o.Start && o.End <= s.End }

func (s TimeSlot) String() string { return s.Start.String() + "-" + s.End.String() }

type DaySchedule struct {
	AcceptsBookings bool       `json:"accepts_bookings"`
	Slots           []TimeSlot `json:"slots"`
}

// WeeklySchedule is keyed by lower-case English weekday names.
type WeeklySchedule map[string]DaySchedule

// DateOverride replaces the weekly entry for one date. Unavailable blocks the
// whole day; otherwise Slots are the custom working hours.
type DateOverride struct {
	Date        string     `json:"date"`
	Unavailable bool       `json:"unavailable"`
	Reason      string     `json:"reason,omitempty"`
	Slots       []TimeSlot `json:"slots,omitempty"`
}

type PhotographerSchedule struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	PhotographerID int64          `gorm:"uniqueIndex;not null" json:"photographer_id"`
	Weekly         WeeklySchedule `gorm:"type:text;serializer:json" json:"weekly"`
	Overrides      []DateOverride `gorm:"type:text;serializer:json" json:"overrides"`

	audit.Info `gorm:"embedded"`
}

func (PhotographerSchedule) TableName() string { return "photographer_schedules" }

func (s *PhotographerSchedule) Override(date string) (DateOverride, bool) {
	for _, o := range s.Overrides {
		if o.Date == date {
			return o, true
		}
	}
	return DateOverride{}, false
}

func WeekdayKey(w time.Weekday) string {
	return strings.ToLower(w.String())
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

package schedule

type SaveRequest struct {
	Weekly    WeeklySchedule `json:"weekly" validate:"required"`
	Overrides []DateOverride `json:"overrides"`
}

type Availability struct {
	PhotographerID  int64      `json:"photographer_id"`
	Date            string     `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	Unavailable     bool       `json:"unavailable"`
	Reason          string     `json:"reason,omitempty"`
	WorkingHours    []TimeSlot `json:"working_hours"`
	Booked          []TimeSlot `json:"booked"`
	FreeSlots       []TimeSlot `json:"free_slots"`
}

type SlotCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

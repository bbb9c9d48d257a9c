package schedule

import "photosession/internal/pkg/apperror"

var (
	ErrScheduleNotFound    = apperror.New(apperror.KindNotFound, "SCHEDULE_NOT_FOUND", "photographer has no schedule")
	ErrDateUnavailable     = apperror.New(apperror.KindGuard, "DATE_UNAVAILABLE", "photographer is not available on this date")
	ErrOutsideWorkingHours = apperror.New(apperror.KindGuard, "OUTSIDE_WORKING_HOURS", "requested time is outside working hours")
	ErrSlotUnavailable     = apperror.New(apperror.KindConflict, "SLOT_UNAVAILABLE", "slot no longer available")
)

var ErrForbidden = apperror.New(apperror.KindForbidden, "FORBIDDEN", "only the photographer or an admin may change this schedule")

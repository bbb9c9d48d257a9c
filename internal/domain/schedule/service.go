package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/logger"
)

// OccupancyReader lists the intervals a photographer is already booked for
// on a date, skipping excludeBookingID when it is non-zero.
type OccupancyReader interface {
	ListOccupied(ctx context.Context, photographerID int64, date string, excludeBookingID int64) ([]TimeSlot, error)
}

type Service struct {
	repo      *Repository
	occupancy OccupancyReader
	now       func() time.Time
}

func NewService(repo *Repository, occupancy OccupancyReader) *Service {
	return &Service{repo: repo, occupancy: occupancy, now: time.Now}
}

func (s *Service) GetSchedule(ctx context.Context, photographerID int64) (*PhotographerSchedule, error) {
	return s.repo.GetByPhotographer(ctx, photographerID)
}

func (s *Service) SaveSchedule(ctx context.Context, actor audit.Actor, photographerID int64, req SaveRequest) (*PhotographerSchedule, error) {
	if !actor.IsAdmin() && !(actor.Role == audit.RolePhotographer && actor.ID == photographerID) {
		return nil, ErrForbidden
	}
	if fields := validateSchedule(req); len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	sched := &PhotographerSchedule{
		PhotographerID: photographerID,
		Weekly:         req.Weekly,
		Overrides:      req.Overrides,
	}
	sched.StampCreate(actor.ID, s.now())
	if err := s.repo.Upsert(ctx, sched); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Int64("photographer_id", photographerID).Int("overrides", len(req.Overrides)).Msg("schedule saved")
	return s.repo.GetByPhotographer(ctx, photographerID)
}

// GetAvailableSlots computes the free intervals of at least duration minutes
// on date. A day off yields an empty list with a reason, not an error.
func (s *Service) GetAvailableSlots(ctx context.Context, photographerID int64, date string, duration int) (*Availability, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, apperror.FieldError("date", "must be YYYY-MM-DD")
	}
	if duration < 15 || duration > 480 {
		return nil, apperror.FieldError("duration", "must be between 15 and 480 minutes")
	}

	sched, err := s.repo.GetByPhotographer(ctx, photographerID)
	if err != nil {
		return nil, err
	}
	res := ResolveWorkingHours(sched, day)

	out := &Availability{
		PhotographerID:  photographerID,
		Date:            date,
		DurationMinutes: duration,
		Unavailable:     res.Unavailable,
		Reason:          res.Reason,
		WorkingHours:    nonNil(res.Windows),
		Booked:          []TimeSlot{},
		FreeSlots:       []TimeSlot{},
	}
	if res.Unavailable {
		return out, nil
	}

	busy, err := s.occupancy.ListOccupied(ctx, photographerID, date, 0)
	if err != nil {
		return nil, fmt.Errorf("list occupied: %w", err)
	}
	out.Booked = nonNil(mergeSlots(busy))
	out.FreeSlots = FreeSlots(res.Windows, busy, duration)
	return out, nil
}

// CheckSlot returns nil when slot on date is inside working hours and free,
// ignoring the booking excludeBookingID.
func (s *Service) CheckSlot(ctx context.Context, photographerID int64, date string, slot TimeSlot, excludeBookingID int64) error {
	day, err := ParseDate(date)
	if err != nil {
		return apperror.FieldError("date", "must be YYYY-MM-DD")
	}
	if !slot.Valid() {
		return apperror.FieldError("end_time", "must be after start_time on the same day")
	}

	sched, err := s.repo.GetByPhotographer(ctx, photographerID)
	if err != nil {
		return err
	}
	res := ResolveWorkingHours(sched, day)
	if res.Unavailable {
		return CheckSlot(res, nil, slot)
	}

	busy, err := s.occupancy.ListOccupied(ctx, photographerID, date, excludeBookingID)
	if err != nil {
		return fmt.Errorf("list occupied: %w", err)
	}
	return CheckSlot(res, busy, slot)
}

// IsSlotAvailable is the boolean form of CheckSlot. Availability rejections
// come back as a reason; only storage or input errors are returned as errors.
func (s *Service) IsSlotAvailable(ctx context.Context, photographerID int64, date string, slot TimeSlot) (SlotCheck, error) {
	err := s.CheckSlot(ctx, photographerID, date, slot, 0)
	switch {
	case err == nil:
		return SlotCheck{Available: true}, nil
	case errors.Is(err, ErrDateUnavailable), errors.Is(err, ErrOutsideWorkingHours), errors.Is(err, ErrSlotUnavailable):
		return SlotCheck{Reason: err.Error()}, nil
	default:
		return SlotCheck{}, err
	}
}

func validateSchedule(req SaveRequest) map[string]string {
	fields := map[string]string{}
	for key, day := range req.Weekly {
		if !isWeekday(key) {
			fields["weekly."+key] = "unknown weekday"
			continue
		}
		for _, slot := range day.Slots {
			if !slot.Valid() {
				fields["weekly."+key] = "slot end must be after start"
			}
		}
		if day.AcceptsBookings && len(day.Slots) == 0 {
			fields["weekly."+key] = "accepting day needs at least one slot"
		}
	}
	seen := map[string]bool{}
	for i, o := range req.Overrides {
		field := fmt.Sprintf("overrides[%d]", i)
		if _, err := ParseDate(o.Date); err != nil {
			fields[field+".date"] = "must be YYYY-MM-DD"
			continue
		}
		if seen[o.Date] {
			fields[field+".date"] = "duplicate override"
		}
		seen[o.Date] = true
		if !o.Unavailable && len(o.Slots) == 0 {
			fields[field+".slots"] = "required unless unavailable"
		}
		for _, slot := range o.Slots {
			if !slot.Valid() {
				fields[field+".slots"] = "slot end must be after start"
			}
		}
	}
	return fields
}

func isWeekday(key string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if WeekdayKey(d) == key {
			return true
		}
	}
	return false
}

func nonNil(s []TimeSlot) []TimeSlot {
	if s == nil {
		return []TimeSlot{}
	}
	return s
}

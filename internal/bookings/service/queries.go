package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/internal/bookings/events"
	"condobook/internal/bookings/policy"
	"condobook/internal/bookings/schedule"
	apperrors "condobook/pkg/errors"
	"condobook/pkg/model"
	"condobook/pkg/validation"
)

const systemActor = "system"

func (s *bookingService) GetByID(ctx context.Context, actor model.Identity, id string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanView(actor, booking); err != nil {
		return nil, s.lifecycleError(err, booking, "view")
	}
	return booking, nil
}

func (s *bookingService) ListMine(
	ctx context.Context,
	actor model.Identity,
	status model.BookingStatus,
	upcomingOnly bool,
	limit int,
	offset int64,
) ([]*model.Booking, int64, error) {
	filter := model.BookingFilter{UserID: actor.ID}
	if status != "" {
		if !status.Valid() {
			return nil, 0, invalidField("status", "oneof", "status must be one of: pending confirmed cancelled completed")
		}
		filter.Statuses = []model.BookingStatus{status}
	}
	if upcomingOnly {
		filter.DateFrom = model.Today(s.now(), s.cfg.Location).Format(model.DateLayout)
	}
	return s.list(ctx, filter, limit, offset)
}

func (s *bookingService) ListAll(
	ctx context.Context,
	actor model.Identity,
	filter model.BookingFilter,
	limit int,
	offset int64,
) ([]*model.Booking, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, apperrors.Forbidden("Only staff may list all bookings")
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, 0, invalidField("status", "oneof", "status must be one of: pending confirmed cancelled completed")
		}
	}
	if filter.DateFrom != "" {
		if _, err := model.ParseDate(filter.DateFrom, s.cfg.Location); err != nil {
			return nil, 0, invalidField("date_from", "date", "date_from must be a date in YYYY-MM-DD format")
		}
	}
	if filter.DateTo != "" {
		if _, err := model.ParseDate(filter.DateTo, s.cfg.Location); err != nil {
			return nil, 0, invalidField("date_to", "date", "date_to must be a date in YYYY-MM-DD format")
		}
	}
	return s.list(ctx, filter, limit, offset)
}

func (s *bookingService) list(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, facilityID, date string) (*model.Availability, error) {
	if date == "" {
		date = model.Today(s.now(), s.cfg.Location).Format(model.DateLayout)
	} else if _, err := model.ParseDate(date, s.cfg.Location); err != nil {
		return nil, invalidField("date", "date", "date must be a date in YYYY-MM-DD format")
	}

	facility, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		return nil, facilityError(err)
	}
	if err := policy.CheckActive(facility); err != nil {
		return nil, policyError(err)
	}

	open, close, err := facility.OperatingMinutes()
	if err != nil {
		return nil, apperrors.Internal("Facility operating hours are invalid", err)
	}

	bookings, err := s.repo.FindOverlapping(ctx, facility.ID, date,
		model.FormatClock(0), model.FormatClock(model.MinutesPerDay), model.ActiveStatuses)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for availability", "facility_id", facility.ID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}
	occupied, err := schedule.Occupied(bookings)
	if err != nil {
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	slots := []model.Slot{}
	for slot := range schedule.Slots(open, close, facility.MinBookingHours*60, occupied) {
		slots = append(slots, model.Slot{StartTime: slot.StartClock(), EndTime: slot.EndClock()})
	}

	booked := make([]model.BookedSlot, 0, len(bookings))
	for _, b := range bookings {
		booked = append(booked, model.BookedSlot{
			BookingID: b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Status:    b.Status,
			BookedBy:  b.UserID,
		})
	}

	return &model.Availability{
		Facility: facility.Summary(),
		Date:     date,
		Slots:    slots,
		Booked:   booked,
	}, nil
}

func (s *bookingService) CompleteElapsed(ctx context.Context) (int, error) {
	now := s.now().In(s.cfg.Location)
	today := now.Format(model.DateLayout)
	clock := model.FormatClock(now.Hour()*60 + now.Minute())

	elapsed, err := s.repo.FindElapsed(ctx, today, clock)
	if err != nil {
		s.cfg.Log.Error("Failed to find elapsed bookings", "error", err)
		return 0, apperrors.Internal("Failed to find elapsed bookings", err)
	}

	completed := 0
	for _, b := range elapsed {
		updated, err := s.repo.UpdateStatus(ctx, b.ID,
			[]model.BookingStatus{model.BookingStatusConfirmed},
			model.StatusChange{Status: model.BookingStatusCompleted, At: s.stamp()})
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				s.cfg.Log.Debug("Booking changed before completion, skipping", "id", b.ID)
				continue
			}
			s.cfg.Log.Error("Failed to complete booking", "id", b.ID, "error", err)
			return completed, apperrors.Internal("Failed to complete booking", err)
		}
		completed++
		s.publish(ctx, events.TypeBookingCompleted, updated, systemActor)
	}

	s.cfg.Log.Info("Completion sweep finished", "elapsed", len(elapsed), "completed", completed)
	return completed, nil
}

func invalidField(field, rule, message string) error {
	return validationError(message, validation.ValidationErrors{
		{Field: field, Rule: rule, Message: message},
	})
}

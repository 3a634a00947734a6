package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/internal/bookings/events"
	"condobook/internal/bookings/policy"
	"condobook/internal/bookings/repository"
	"condobook/internal/bookings/schedule"
	"condobook/internal/bookings/validator"
	"condobook/pkg/config"
	apperrors "condobook/pkg/errors"
	"condobook/pkg/locale"
	"condobook/pkg/model"
	"condobook/pkg/sanitizer"

	"github.com/google/uuid"
)

type BookingService interface {
	CheckAvailability(ctx context.Context, facilityID, date string) (*model.Availability, error)
	Create(ctx context.Context, actor model.Identity, req *model.BookingRequest) (*model.Booking, error)
	Approve(ctx context.Context, actor model.Identity, id string) (*model.Booking, error)
	Cancel(ctx context.Context, actor model.Identity, id string, req *model.CancelRequest) (*model.Booking, error)
	UpdatePending(ctx context.Context, actor model.Identity, id string, update *model.BookingUpdate) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Identity, id string) (*model.Booking, error)
	ListMine(ctx context.Context, actor model.Identity, status model.BookingStatus, upcomingOnly bool, limit int, offset int64) ([]*model.Booking, int64, error)
	ListAll(ctx context.Context, actor model.Identity, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	// CompleteElapsed marks confirmed bookings whose end has passed as completed.
	CompleteElapsed(ctx context.Context) (int, error)
}

// FacilityDirectory resolves facilities. Its errors are AppErrors.
type FacilityDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Facility, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	facilities FacilityDirectory
	validator  *validator.BookingValidator
	publisher  events.Publisher
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	facilities FacilityDirectory,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return newBookingService(repo, facilities, validator, publisher, cfg, time.Now)
}

func newBookingService(
	repo repository.BookingRepository,
	facilities FacilityDirectory,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	now func() time.Time,
) *bookingService {
	return &bookingService{
		repo:       repo,
		facilities: facilities,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
		now:        now,
	}
}

func (s *bookingService) Create(ctx context.Context, actor model.Identity, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "user_id", actor.ID, "error", err)
		return nil, validationError("Booking validation failed", err)
	}
	s.applyDefaults(req)

	facility, err := s.facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, facilityError(err)
	}

	now := s.now()
	interval, err := policy.Check(facility, policy.Candidate{
		BookingDate:       req.BookingDate,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		ExpectedAttendees: req.ExpectedAttendees,
	}, now, s.cfg.Location)
	if err != nil {
		s.cfg.Log.Warn("Booking rejected by facility policy", "facility_id", facility.ID, "user_id", actor.ID, "error", err)
		return nil, policyError(err)
	}

	stamp := now.UTC().Truncate(time.Millisecond)
	booking := &model.Booking{
		ID:                  uuid.NewString(),
		FacilityID:          facility.ID,
		UserID:              actor.ID,
		BookingDate:         req.BookingDate,
		StartTime:           interval.StartClock(),
		EndTime:             interval.EndClock(),
		ExpectedAttendees:   req.ExpectedAttendees,
		Purpose:             req.Purpose,
		SpecialRequirements: req.SpecialRequirements,
		ContactPhone:        req.ContactPhone,
		TotalAmount:         policy.TotalAmount(facility.HourlyRate, interval.Minutes()),
		Status:              model.BookingStatusPending,
		CreatedAt:           stamp,
		UpdatedAt:           stamp,
	}
	year := now.In(s.cfg.Location).Year()

	err = s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindOverlapping(ctx, booking.FacilityID, booking.BookingDate, booking.StartTime, booking.EndTime, model.ActiveStatuses)
		if err != nil {
			return apperrors.Internal("Failed to check booking conflicts", err)
		}
		conflicting, err := schedule.FindConflict(interval, existing)
		if err != nil {
			return apperrors.Internal("Failed to check booking conflicts", err)
		}
		if conflicting != nil {
			return conflictError(conflicting)
		}

		seq, err := s.repo.NextSequence(ctx, year)
		if err != nil {
			return apperrors.Internal("Failed to allocate booking number", err)
		}
		booking.BookingNumber = policy.BookingNumber(year, seq)

		if err := s.repo.Create(ctx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrTimeConflict) {
				return apperrors.Conflict("Time slot is already booked")
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"facility_id", booking.FacilityID,
			"booking_date", booking.BookingDate,
			"slot", interval.String(),
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_number", booking.BookingNumber,
		"facility_id", booking.FacilityID,
		"booking_date", booking.BookingDate,
		"slot", interval.String(),
	)
	s.publish(ctx, events.TypeBookingCreated, booking, actor.ID)
	return booking, nil
}

func (s *bookingService) Approve(ctx context.Context, actor model.Identity, id string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanApprove(actor, booking); err != nil {
		return nil, s.lifecycleError(err, booking, "approve")
	}

	updated, err := s.repo.UpdateStatus(ctx, id,
		[]model.BookingStatus{model.BookingStatusPending},
		model.StatusChange{
			Status:     model.BookingStatusConfirmed,
			ApprovedBy: actor.ID,
			At:         s.stamp(),
		})
	if err != nil {
		return nil, s.writeError(err, id, "Failed to approve booking")
	}

	s.cfg.Log.Info("Booking approved", "id", id, "booking_number", updated.BookingNumber, "approved_by", actor.ID)
	s.publish(ctx, events.TypeBookingApproved, updated, actor.ID)
	return updated, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor model.Identity, id string, req *model.CancelRequest) (*model.Booking, error) {
	if req == nil {
		req = &model.CancelRequest{}
	}
	req.Reason = sanitizer.NormalizeText(req.Reason)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validationError("Cancellation validation failed", err)
	}
	if req.Reason == "" {
		req.Reason = config.DefaultCancellationReason
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanCancel(actor, booking, s.now(), s.cfg.Location, s.cfg.CancellationCutoff); err != nil {
		return nil, s.lifecycleError(err, booking, "cancel")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.ActiveStatuses, model.StatusChange{
		Status:             model.BookingStatusCancelled,
		CancellationReason: req.Reason,
		At:                 s.stamp(),
	})
	if err != nil {
		return nil, s.writeError(err, id, "Failed to cancel booking")
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "booking_number", updated.BookingNumber, "cancelled_by", actor.ID)
	s.publish(ctx, events.TypeBookingCancelled, updated, actor.ID)
	return updated, nil
}

func (s *bookingService) UpdatePending(ctx context.Context, actor model.Identity, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if update == nil {
		update = &model.BookingUpdate{}
	}
	s.sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validationError("Booking update validation failed", err)
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpdate(actor, booking); err != nil {
		return nil, s.lifecycleError(err, booking, "update")
	}

	if update.ExpectedAttendees != nil {
		facility, err := s.facilities.GetByID(ctx, booking.FacilityID)
		if err != nil {
			return nil, facilityError(err)
		}
		if err := policy.CheckCapacity(facility, *update.ExpectedAttendees); err != nil {
			return nil, policyError(err)
		}
	}

	updated, err := s.repo.UpdateDetails(ctx, id, update, s.stamp())
	if err != nil {
		return nil, s.writeError(err, id, "Failed to update booking")
	}

	s.cfg.Log.Info("Booking updated", "id", id, "booking_number", updated.BookingNumber, "updated_by", actor.ID)
	s.publish(ctx, events.TypeBookingUpdated, updated, actor.ID)
	return updated, nil
}

// load fetches a booking and maps store errors to AppErrors.
func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) publish(ctx context.Context, t events.Type, booking *model.Booking, actorID string) {
	event := events.New(t, booking, actorID, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", string(t),
			"event_id", event.ID,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// phoneRegion is the country whose local numbering residents use.
func (s *bookingService) phoneRegion() string {
	return locale.RegionForTimezone(s.cfg.FacilityTimezone)
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.FacilityID = sanitizer.TrimAndNormalize(req.FacilityID)
	req.BookingDate = sanitizer.TrimAndNormalize(req.BookingDate)
	req.StartTime = sanitizer.TrimAndNormalize(req.StartTime)
	req.EndTime = sanitizer.TrimAndNormalize(req.EndTime)
	req.Purpose = sanitizer.NormalizeText(req.Purpose)
	req.SpecialRequirements = sanitizer.NormalizeText(req.SpecialRequirements)
	req.ContactPhone = sanitizer.NormalizePhone(req.ContactPhone, s.phoneRegion())
}

func (s *bookingService) sanitizeUpdate(u *model.BookingUpdate) {
	if u.Purpose != nil {
		*u.Purpose = sanitizer.NormalizeText(*u.Purpose)
	}
	if u.SpecialRequirements != nil {
		*u.SpecialRequirements = sanitizer.NormalizeText(*u.SpecialRequirements)
	}
	if u.ContactPhone != nil {
		*u.ContactPhone = sanitizer.NormalizePhone(*u.ContactPhone, s.phoneRegion())
	}
}

func (s *bookingService) applyDefaults(req *model.BookingRequest) {
	req.StartTime = model.NormalizeClock(req.StartTime)
	req.EndTime = model.NormalizeClock(req.EndTime)
	if req.ExpectedAttendees == 0 {
		req.ExpectedAttendees = 1
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	facilitieserrors "condobook/internal/facilities/errors"
	"condobook/internal/facilities/repository"
	"condobook/internal/facilities/validator"
	"condobook/pkg/config"
	apperrors "condobook/pkg/errors"
	"condobook/pkg/model"
	"condobook/pkg/sanitizer"
	"condobook/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FacilityService interface {
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	List(ctx context.Context, actor model.Identity, filter model.FacilityFilter, limit int, offset int64) ([]*model.Facility, int64, error)
	Create(ctx context.Context, actor model.Identity, req *model.FacilityRequest) (*model.Facility, error)
	Update(ctx context.Context, actor model.Identity, id string, update *model.FacilityUpdate) (*model.Facility, error)
	Delete(ctx context.Context, actor model.Identity, id string) error
}

// BookingCounter reports bookings that still hold a facility's time.
type BookingCounter interface {
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
}

type facilityService struct {
	repo      repository.FacilityRepository
	bookings  BookingCounter
	validator *validator.FacilityValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewFacilityService(
	repo repository.FacilityRepository,
	bookings BookingCounter,
	validator *validator.FacilityValidator,
	cfg *config.Config,
) FacilityService {
	return newFacilityService(repo, bookings, validator, cfg, time.Now)
}

func newFacilityService(
	repo repository.FacilityRepository,
	bookings BookingCounter,
	validator *validator.FacilityValidator,
	cfg *config.Config,
	now func() time.Time,
) *facilityService {
	return &facilityService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
		now:       now,
	}
}

func (s *facilityService) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	facility, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, facilitieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to get facility by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve facility", err)
	}

	return facility, nil
}

// List returns facilities; callers other than staff only see active ones.
func (s *facilityService) List(
	ctx context.Context,
	actor model.Identity,
	filter model.FacilityFilter,
	limit int,
	offset int64,
) ([]*model.Facility, int64, error) {
	filter.Type = sanitizer.NormalizeLabel(filter.Type)
	if !actor.IsStaff() {
		filter.ActiveOnly = true
	}

	var count int64
	var facilities []*model.Facility
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count facilities", "error", err)
			errCount = apperrors.Internal("Failed to count facilities", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		facilities, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list facilities",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve facilities", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if facilities == nil {
		facilities = []*model.Facility{}
	}

	return facilities, count, nil
}

func (s *facilityService) Create(ctx context.Context, actor model.Identity, req *model.FacilityRequest) (*model.Facility, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may create facilities")
	}

	now := s.stamp()
	facility := s.newFacility(req)
	facility.ID = uuid.NewString()
	facility.CreatedAt = now
	facility.UpdatedAt = now

	if err := s.validator.Validate(facility); err != nil {
		s.cfg.Log.Warn("Facility validation failed",
			"name", facility.Name,
			"error", err,
		)
		return nil, validationError("Facility validation failed", err)
	}

	if err := s.repo.Create(ctx, facility); err != nil {
		s.cfg.Log.Error("Failed to create facility",
			"name", facility.Name,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create facility", err)
	}

	s.cfg.Log.Info("Facility created successfully",
		"id", facility.ID,
		"name", facility.Name,
		"type", facility.Type,
		"created_by", actor.ID,
	)

	return facility, nil
}

func (s *facilityService) Update(ctx context.Context, actor model.Identity, id string, update *model.FacilityUpdate) (*model.Facility, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may update facilities")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.sanitizeUpdate(update)
	merged := *existing
	update.Apply(&merged)
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = s.stamp()

	if err := s.validator.Validate(&merged); err != nil {
		s.cfg.Log.Warn("Facility validation failed",
			"id", id,
			"error", err,
		)
		return nil, validationError("Facility validation failed", err)
	}

	if err := s.repo.Update(ctx, &merged); err != nil {
		if errors.Is(err, facilitieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to update facility",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update facility", err)
	}

	s.cfg.Log.Info("Facility updated successfully",
		"id", id,
		"name", merged.Name,
		"updated_by", actor.ID,
	)

	return &merged, nil
}

// Delete removes a facility unless it still has pending or confirmed
// bookings dated today or later.
func (s *facilityService) Delete(ctx context.Context, actor model.Identity, id string) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only administrators may delete facilities")
	}
	if id == "" {
		return apperrors.InvalidInput("Facility ID cannot be empty")
	}

	today := model.Today(s.now(), s.cfg.Location).Format(model.DateLayout)

	err := s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		active, err := s.bookings.Count(ctx, model.BookingFilter{
			FacilityID: id,
			Statuses:   model.ActiveStatuses,
			DateFrom:   today,
		})
		if err != nil {
			return fmt.Errorf("failed to count upcoming bookings: %w", err)
		}
		if active > 0 {
			return apperrors.Conflict("Facility has upcoming bookings").WithDetails(map[string]any{
				"active_bookings": active,
			})
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if errors.Is(err, facilitieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Facility", id)
		}
		s.cfg.Log.Error("Failed to delete facility",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete facility", err)
	}

	s.cfg.Log.Info("Facility deleted successfully", "id", id, "deleted_by", actor.ID)

	return nil
}

func (s *facilityService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// newFacility builds a facility from req, filling unset policy fields with
// the directory defaults.
func (s *facilityService) newFacility(req *model.FacilityRequest) *model.Facility {
	f := &model.Facility{
		Name:                sanitizer.NormalizeName(req.Name),
		Type:                sanitizer.NormalizeLabel(req.Type),
		Description:         sanitizer.NormalizeText(req.Description),
		Location:            sanitizer.TrimAndNormalize(req.Location),
		Rules:               sanitizer.NormalizeText(req.Rules),
		Amenities:           datatypes.JSONSlice[string](sanitizer.NormalizeAmenities(req.Amenities)),
		Capacity:            req.Capacity,
		HourlyRate:          req.HourlyRate,
		OperatingHoursStart: model.NormalizeClock(sanitizer.TrimAndNormalize(req.OperatingHoursStart)),
		OperatingHoursEnd:   model.NormalizeClock(sanitizer.TrimAndNormalize(req.OperatingHoursEnd)),
		MinBookingHours:     config.DefaultMinBookingHours,
		MaxBookingHours:     config.DefaultMaxBookingHours,
		AdvanceBookingDays:  config.DefaultAdvanceBookingDays,
		IsActive:            true,
	}

	if f.OperatingHoursStart == "" {
		f.OperatingHoursStart = config.DefaultOperatingHoursStart
	}
	if f.OperatingHoursEnd == "" {
		f.OperatingHoursEnd = config.DefaultOperatingHoursEnd
	}
	if req.MinBookingHours != nil {
		f.MinBookingHours = *req.MinBookingHours
	}
	if req.MaxBookingHours != nil {
		f.MaxBookingHours = *req.MaxBookingHours
	}
	if req.AdvanceBookingDays != nil {
		f.AdvanceBookingDays = *req.AdvanceBookingDays
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}

	return f
}

func (s *facilityService) sanitizeUpdate(u *model.FacilityUpdate) {
	if u.Name != nil {
		*u.Name = sanitizer.NormalizeName(*u.Name)
	}
	if u.Type != nil {
		*u.Type = sanitizer.NormalizeLabel(*u.Type)
	}
	if u.Description != nil {
		*u.Description = sanitizer.NormalizeText(*u.Description)
	}
	if u.Location != nil {
		*u.Location = sanitizer.TrimAndNormalize(*u.Location)
	}
	if u.Rules != nil {
		*u.Rules = sanitizer.NormalizeText(*u.Rules)
	}
	if u.Amenities != nil {
		normalized := sanitizer.NormalizeAmenities(*u.Amenities)
		u.Amenities = &normalized
	}
	if u.OperatingHoursStart != nil {
		*u.OperatingHoursStart = model.NormalizeClock(sanitizer.TrimAndNormalize(*u.OperatingHoursStart))
	}
	if u.OperatingHoursEnd != nil {
		*u.OperatingHoursEnd = model.NormalizeClock(sanitizer.TrimAndNormalize(*u.OperatingHoursEnd))
	}
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Internal("Failed to validate facility", err)
}

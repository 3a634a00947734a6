package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"condobook/internal/bookings/events"
	"condobook/internal/bookings/policy"
	"condobook/internal/bookings/repository"
	"condobook/internal/bookings/validator"
	"condobook/internal/testutil"
	"condobook/pkg/config"
	apperrors "condobook/pkg/errors"
	"condobook/pkg/logger"
	"condobook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hallID = "2f6b1c0e-4a8d-4e7b-9c3f-5d1a2b3c4d5e"

var (
	testLoc  = time.FixedZone("IST", 2*60*60)
	resident = model.Identity{ID: "resident-1", Role: model.RoleResident}
	neighbor = model.Identity{ID: "resident-2", Role: model.RoleResident}
	staff    = model.Identity{ID: "staff-1", Role: model.RoleStaff}
)

type fakeDirectory struct {
	facilities map[string]*model.Facility
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (*model.Facility, error) {
	f, ok := d.facilities[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Facility", id)
	}
	copied := *f
	return &copied, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// functionHall is the facility of the reference scenarios.
func functionHall() *model.Facility {
	return &model.Facility{
		ID:                  hallID,
		Name:                "Function Hall",
		Type:                "hall",
		Capacity:            20,
		HourlyRate:          200,
		OperatingHoursStart: "08:00",
		OperatingHoursEnd:   "22:00",
		MinBookingHours:     2,
		MaxBookingHours:     8,
		AdvanceBookingDays:  30,
		IsActive:            true,
	}
}

type fixture struct {
	svc       *bookingService
	repo      repository.BookingRepository
	directory *fakeDirectory
	publisher *recordingPublisher
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:      repository.NewGormBookingRepositoryFromDB(testutil.OpenSQLite(t)),
		directory: &fakeDirectory{facilities: map[string]*model.Facility{hallID: functionHall()}},
		publisher: &recordingPublisher{},
		clock:     time.Date(2024, 2, 1, 9, 0, 0, 0, testLoc),
	}
	cfg := &config.Config{
		Location:           testLoc,
		CancellationCutoff: 24 * time.Hour,
		Log:                logger.Nop(),
	}
	f.svc = newBookingService(f.repo, f.directory, validator.NewBookingValidator(logger.Nop()), f.publisher, cfg,
		func() time.Time { return f.clock })
	return f
}

func request(date, start, end string, attendees int) *model.BookingRequest {
	return &model.BookingRequest{
		FacilityID:        hallID,
		BookingDate:       date,
		StartTime:         start,
		EndTime:           end,
		ExpectedAttendees: attendees,
	}
}

func requireCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.Equal(t, code, appErr.Code, "error: %v", err)
	return appErr
}

func violationRule(t *testing.T, err error) string {
	t.Helper()
	appErr := requireCode(t, err, apperrors.CodeValidation)
	violations, ok := appErr.Details["errors"].([]policy.Violation)
	require.True(t, ok, "details = %#v", appErr.Details)
	require.Len(t, violations, 1)
	return violations[0].Rule
}

func TestScenarios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A: a valid request becomes a pending booking priced at rate x hours.
	a, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, a.Status)
	assert.Equal(t, 400.0, a.TotalAmount)
	assert.Equal(t, "BK2024000001", a.BookingNumber)
	assert.Equal(t, resident.ID, a.UserID)

	// B: an overlapping request is rejected and names the booking it collides with.
	_, err = f.svc.Create(ctx, neighbor, request("2024-02-10", "11:00", "13:00", 5))
	appErr := requireCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, a.ID, appErr.Details["conflicting_booking_id"])
	assert.Equal(t, a.BookingNumber, appErr.Details["conflicting_booking_number"])

	// C: a one-hour request is below the facility minimum.
	_, err = f.svc.Create(ctx, neighbor, request("2024-02-10", "08:00", "09:00", 5))
	assert.Equal(t, policy.RuleDurationBelowMinimum, violationRule(t, err))

	// D: staff approve once; a second approval is an invalid transition.
	approved, err := f.svc.Approve(ctx, staff, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, approved.Status)
	assert.Equal(t, staff.ID, approved.ApprovedBy)

	_, err = f.svc.Approve(ctx, staff, a.ID)
	requireCode(t, err, apperrors.CodeInvalidState)

	// E: three hours before start the owner is inside the cutoff; staff are not bound by it.
	f.clock = time.Date(2024, 2, 10, 7, 0, 0, 0, testLoc)
	_, err = f.svc.Cancel(ctx, resident, a.ID, nil)
	requireCode(t, err, apperrors.CodeForbidden)

	cancelled, err := f.svc.Cancel(ctx, staff, a.ID, &model.CancelRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, config.DefaultCancellationReason, cancelled.CancellationReason)

	assert.Equal(t, []events.Type{
		events.TypeBookingCreated,
		events.TypeBookingApproved,
		events.TypeBookingCancelled,
	}, f.publisher.types())
}

func TestCreate_PolicyViolations(t *testing.T) {
	tests := []struct {
		name     string
		req      *model.BookingRequest
		mutate   func(*model.Facility)
		wantRule string
	}{
		{
			name:     "capacity",
			req:      request("2024-02-10", "10:00", "12:00", 21),
			wantRule: policy.RuleCapacityExceeded,
		},
		{
			name:     "above maximum",
			req:      request("2024-02-10", "08:00", "17:00", 5),
			wantRule: policy.RuleDurationAboveMaximum,
		},
		{
			name:     "not on the hour",
			req:      request("2024-02-10", "10:30", "12:30", 5),
			wantRule: policy.RuleWholeHoursOnly,
		},
		{
			name:     "in the past",
			req:      request("2024-01-31", "10:00", "12:00", 5),
			wantRule: policy.RuleOutsideBookingWindow,
		},
		{
			name:     "beyond advance window",
			req:      request("2024-03-03", "10:00", "12:00", 5),
			wantRule: policy.RuleOutsideBookingWindow,
		},
		{
			name:     "before opening",
			req:      request("2024-02-10", "06:00", "08:00", 5),
			wantRule: policy.RuleOutsideOperatingHours,
		},
		{
			name:     "after closing",
			req:      request("2024-02-10", "21:00", "23:00", 5),
			wantRule: policy.RuleOutsideOperatingHours,
		},
		{
			name:     "inactive facility",
			req:      request("2024-02-10", "10:00", "12:00", 5),
			mutate:   func(f *model.Facility) { f.IsActive = false },
			wantRule: policy.RuleFacilityInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.mutate != nil {
				tt.mutate(f.directory.facilities[hallID])
			}
			_, err := f.svc.Create(context.Background(), resident, tt.req)
			assert.Equal(t, tt.wantRule, violationRule(t, err))
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestCreate_BoundaryDatesAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, resident, request("2024-02-01", "10:00", "12:00", 5))
	require.NoError(t, err, "today is inside the window")

	_, err = f.svc.Create(ctx, resident, request("2024-03-02", "10:00", "12:00", 5))
	require.NoError(t, err, "today + advance days is inside the window")
}

func TestCreate_RequestErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, resident, request("2024-02-10", "12:00", "10:00", 5))
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.Create(ctx, resident, request("10/02/2024", "10:00", "12:00", 5))
	requireCode(t, err, apperrors.CodeValidation)

	req := request("2024-02-10", "10:00", "12:00", 5)
	req.FacilityID = "00000000-0000-0000-0000-000000000000"
	_, err = f.svc.Create(ctx, resident, req)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestCreate_DefaultsAndNormalization(t *testing.T) {
	f := newFixture(t)

	req := request("2024-02-10", "10:00:00", "13:00:00", 0)
	req.Purpose = "  Birthday\x00 party  "
	req.ContactPhone = "054-123-4567"

	b, err := f.svc.Create(context.Background(), resident, req)
	require.NoError(t, err)
	assert.Equal(t, 1, b.ExpectedAttendees)
	assert.Equal(t, "10:00", b.StartTime)
	assert.Equal(t, "13:00", b.EndTime)
	assert.Equal(t, 600.0, b.TotalAmount)
	assert.Equal(t, "Birthday party", b.Purpose)
	assert.Equal(t, "+972541234567", b.ContactPhone)
}

func TestCreate_BookingNumbersIncrease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, resident, request("2024-02-10", "08:00", "10:00", 1))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 1))
	require.NoError(t, err)

	assert.Equal(t, "BK2024000001", first.BookingNumber)
	assert.Equal(t, "BK2024000002", second.BookingNumber)

	// A rejected request does not consume a number.
	_, err = f.svc.Create(ctx, resident, request("2024-02-10", "09:00", "11:00", 1))
	requireCode(t, err, apperrors.CodeConflict)

	f.clock = time.Date(2025, 1, 1, 9, 0, 0, 0, testLoc)
	next, err := f.svc.Create(ctx, resident, request("2025-01-05", "10:00", "12:00", 1))
	require.NoError(t, err)
	assert.Equal(t, "BK2025000001", next.BookingNumber)
}

func TestCreate_ConcurrentOverlapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 6
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Create(ctx, resident, request("2024-02-10", "14:00", "16:00", 2))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCancel_FreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, resident, b.ID, &model.CancelRequest{Reason: "Change of plans"})
	require.NoError(t, err)
	assert.Equal(t, "Change of plans", cancelled.CancellationReason)

	_, err = f.svc.Cancel(ctx, resident, b.ID, nil)
	requireCode(t, err, apperrors.CodeInvalidState)

	_, err = f.svc.Create(ctx, neighbor, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)
}

func TestCancel_Cutoff(t *testing.T) {
	tests := []struct {
		name  string
		clock time.Time
		actor model.Identity
		code  string
	}{
		{"owner well ahead", time.Date(2024, 2, 8, 10, 0, 0, 0, testLoc), resident, ""},
		{"owner exactly at cutoff", time.Date(2024, 2, 9, 10, 0, 0, 0, testLoc), resident, ""},
		{"owner just inside cutoff", time.Date(2024, 2, 9, 10, 0, 1, 0, testLoc), resident, apperrors.CodeForbidden},
		{"staff inside cutoff", time.Date(2024, 2, 10, 9, 0, 0, 0, testLoc), staff, ""},
		{"stranger", time.Date(2024, 2, 8, 10, 0, 0, 0, testLoc), neighbor, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			b, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
			require.NoError(t, err)

			f.clock = tt.clock
			_, err = f.svc.Cancel(ctx, tt.actor, b.ID, nil)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			requireCode(t, err, tt.code)
		})
	}
}

func TestApprove_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, resident, b.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.Approve(ctx, staff, "00000000-0000-4000-8000-000000000000")
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.svc.Approve(ctx, staff, "bad-id")
	requireCode(t, err, apperrors.CodeInvalidInput)
}

func TestUpdatePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)

	purpose := "Chess tournament"
	attendees := 12
	updated, err := f.svc.UpdatePending(ctx, resident, b.ID, &model.BookingUpdate{Purpose: &purpose, ExpectedAttendees: &attendees})
	require.NoError(t, err)
	assert.Equal(t, purpose, updated.Purpose)
	assert.Equal(t, 12, updated.ExpectedAttendees)

	tooMany := 50
	_, err = f.svc.UpdatePending(ctx, resident, b.ID, &model.BookingUpdate{ExpectedAttendees: &tooMany})
	assert.Equal(t, policy.RuleCapacityExceeded, violationRule(t, err))

	_, err = f.svc.UpdatePending(ctx, resident, b.ID, &model.BookingUpdate{})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.UpdatePending(ctx, neighbor, b.ID, &model.BookingUpdate{Purpose: &purpose})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.Approve(ctx, staff, b.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdatePending(ctx, resident, b.ID, &model.BookingUpdate{Purpose: &purpose})
	requireCode(t, err, apperrors.CodeInvalidState)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)

	first, err := f.svc.CheckAvailability(ctx, hallID, "2024-02-10")
	require.NoError(t, err)

	var starts []string
	for _, s := range first.Slots {
		starts = append(starts, s.StartTime)
	}
	// Windows starting from 09:00 to 11:00 overlap the 10:00-12:00 booking.
	assert.Equal(t, []string{"08:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00", "18:00", "19:00", "20:00"}, starts)
	require.Len(t, first.Booked, 1)
	assert.Equal(t, b.ID, first.Booked[0].BookingID)
	assert.Equal(t, resident.ID, first.Booked[0].BookedBy)
	assert.Equal(t, "08:00-22:00", first.Facility.OperatingHours)

	second, err := f.svc.CheckAvailability(ctx, hallID, "2024-02-10")
	require.NoError(t, err)
	assert.Equal(t, first, second, "availability is idempotent without writes")

	_, err = f.svc.Cancel(ctx, resident, b.ID, nil)
	require.NoError(t, err)
	freed, err := f.svc.CheckAvailability(ctx, hallID, "2024-02-10")
	require.NoError(t, err)
	assert.Len(t, freed.Slots, 13)
	assert.Empty(t, freed.Booked)
}

func TestCheckAvailability_Edges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	today, err := f.svc.CheckAvailability(ctx, hallID, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", today.Date)

	_, err = f.svc.CheckAvailability(ctx, hallID, "tomorrow")
	requireCode(t, err, apperrors.CodeValidation)

	f.directory.facilities[hallID].MinBookingHours = 15
	none, err := f.svc.CheckAvailability(ctx, hallID, "2024-02-10")
	require.NoError(t, err)
	assert.NotNil(t, none.Slots)
	assert.Empty(t, none.Slots)

	f.directory.facilities[hallID].IsActive = false
	_, err = f.svc.CheckAvailability(ctx, hallID, "2024-02-10")
	assert.Equal(t, policy.RuleFacilityInactive, violationRule(t, err))
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, neighbor, request("2024-02-11", "10:00", "12:00", 5))
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, resident, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.svc.GetByID(ctx, neighbor, mine.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.GetByID(ctx, staff, mine.ID)
	require.NoError(t, err)

	list, total, err := f.svc.ListMine(ctx, resident, "", false, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)

	_, total, err = f.svc.ListMine(ctx, resident, model.BookingStatusConfirmed, false, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, _, err = f.svc.ListMine(ctx, resident, "archived", false, 10, 0)
	requireCode(t, err, apperrors.CodeValidation)

	f.clock = time.Date(2024, 2, 11, 9, 0, 0, 0, testLoc)
	_, total, err = f.svc.ListMine(ctx, resident, "", true, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "yesterday's booking is not upcoming")

	_, _, err = f.svc.ListAll(ctx, resident, model.BookingFilter{}, 10, 0)
	requireCode(t, err, apperrors.CodeForbidden)

	all, total, err := f.svc.ListAll(ctx, staff, model.BookingFilter{FacilityID: hallID}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	_, _, err = f.svc.ListAll(ctx, staff, model.BookingFilter{DateFrom: "02/10/2024"}, 10, 0)
	requireCode(t, err, apperrors.CodeValidation)
}

func TestCompleteElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done, err := f.svc.Create(ctx, resident, request("2024-02-10", "08:00", "10:00", 5))
	require.NoError(t, err)
	running, err := f.svc.Create(ctx, resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)
	pending, err := f.svc.Create(ctx, resident, request("2024-02-09", "10:00", "12:00", 5))
	require.NoError(t, err)

	for _, b := range []*model.Booking{done, running} {
		_, err := f.svc.Approve(ctx, staff, b.ID)
		require.NoError(t, err)
	}

	f.clock = time.Date(2024, 2, 10, 11, 0, 0, 0, testLoc)
	completed, err := f.svc.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	got, err := f.svc.GetByID(ctx, staff, done.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, got.Status)

	for _, id := range []string{running.ID, pending.ID} {
		got, err := f.svc.GetByID(ctx, staff, id)
		require.NoError(t, err)
		assert.NotEqual(t, model.BookingStatusCompleted, got.Status)
	}

	_, err = f.svc.Cancel(ctx, staff, done.ID, nil)
	requireCode(t, err, apperrors.CodeInvalidState)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker unavailable")

	b, err := f.svc.Create(context.Background(), resident, request("2024-02-10", "10:00", "12:00", 5))
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, b.Status)
}

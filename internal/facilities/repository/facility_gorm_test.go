package repository

import (
	"context"
	"testing"
	"time"

	facilitieserrors "condobook/internal/facilities/errors"
	"condobook/internal/testutil"
	"condobook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newFacility(name, kind string, active bool) *model.Facility {
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	return &model.Facility{
		ID:                  uuid.NewString(),
		Name:                name,
		Type:                kind,
		Amenities:           datatypes.JSONSlice[string]{"projector", "sound system"},
		Capacity:            20,
		HourlyRate:          200,
		OperatingHoursStart: "08:00",
		OperatingHoursEnd:   "22:00",
		MinBookingHours:     2,
		MaxBookingHours:     8,
		AdvanceBookingDays:  30,
		IsActive:            active,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestGormFacilityRepository_CRUD(t *testing.T) {
	repo := NewGormFacilityRepositoryFromDB(testutil.OpenSQLite(t))
	ctx := context.Background()

	f := newFacility("Function Hall", "function_room", true)
	require.NoError(t, repo.Create(ctx, f))

	got, err := repo.FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Function Hall", got.Name)
	assert.Equal(t, datatypes.JSONSlice[string]{"projector", "sound system"}, got.Amenities)

	got.IsActive = false
	got.Capacity = 40
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 40, got.Capacity)

	require.NoError(t, repo.Delete(ctx, f.ID))
	_, err = repo.FindByID(ctx, f.ID)
	assert.ErrorIs(t, err, facilitieserrors.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, f.ID), facilitieserrors.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, f), facilitieserrors.ErrNotFound)
}

func TestGormFacilityRepository_FindByID_UnknownFormat(t *testing.T) {
	repo := NewGormFacilityRepositoryFromDB(testutil.OpenSQLite(t))

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, facilitieserrors.ErrNotFound)
}

func TestGormFacilityRepository_FindAllAndCount(t *testing.T) {
	repo := NewGormFacilityRepositoryFromDB(testutil.OpenSQLite(t))
	ctx := context.Background()

	for _, f := range []*model.Facility{
		newFacility("Pool", "pool", true),
		newFacility("Gym", "gym", true),
		newFacility("Old Pool", "pool", false),
		newFacility("BBQ Area", "bbq", true),
	} {
		require.NoError(t, repo.Create(ctx, f))
	}

	tests := []struct {
		name   string
		filter model.FacilityFilter
		want   []string
	}{
		{"all sorted by name", model.FacilityFilter{}, []string{"BBQ Area", "Gym", "Old Pool", "Pool"}},
		{"active only", model.FacilityFilter{ActiveOnly: true}, []string{"BBQ Area", "Gym", "Pool"}},
		{"by type", model.FacilityFilter{Type: "pool"}, []string{"Old Pool", "Pool"}},
		{"active pools", model.FacilityFilter{Type: "pool", ActiveOnly: true}, []string{"Pool"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindAll(ctx, tt.filter, 10, 0)
			require.NoError(t, err)

			names := make([]string, 0, len(found))
			for _, f := range found {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)

			count, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.EqualValues(t, len(tt.want), count)
		})
	}

	page, err := repo.FindAll(ctx, model.FacilityFilter{}, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Gym", page[0].Name)
}

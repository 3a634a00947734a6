package repository

import (
	"context"
	"os"
	"testing"
	"time"

	facilitieserrors "condobook/internal/facilities/errors"
	"condobook/pkg/client"
	"condobook/pkg/config"
	"condobook/pkg/logger"
	"condobook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newMongoTestRepo(t *testing.T) FacilityRepository {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	dbName := "condobook_test_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mc.Database(dbName).Drop(ctx)
		_ = mc.Disconnect(ctx)
	})

	return NewMongoFacilityRepository(&config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Nop(),
		Client:            &client.Client{Mongo: mc},
	})
}

func TestMongoFacilityRepository_CRUD(t *testing.T) {
	repo := newMongoTestRepo(t)
	ctx := context.Background()

	pool := newFacility("Pool", "pool", true)
	gym := newFacility("Gym", "gym", false)
	require.NoError(t, repo.Create(ctx, pool))
	require.NoError(t, repo.Create(ctx, gym))

	got, err := repo.FindByID(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pool", got.Name)
	assert.Equal(t, []string{"projector", "sound system"}, []string(got.Amenities))

	active, err := repo.FindAll(ctx, model.FacilityFilter{ActiveOnly: true}, 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, pool.ID, active[0].ID)

	count, err := repo.Count(ctx, model.FacilityFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	gym.IsActive = true
	require.NoError(t, repo.Update(ctx, gym))
	count, err = repo.Count(ctx, model.FacilityFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, repo.Delete(ctx, pool.ID))
	_, err = repo.FindByID(ctx, pool.ID)
	assert.ErrorIs(t, err, facilitieserrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, pool.ID), facilitieserrors.ErrNotFound)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	facilitieserrors "condobook/internal/facilities/errors"
	"condobook/pkg/config"
	"condobook/pkg/db"
	mongotx "condobook/pkg/db/mongo"
	"condobook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoFacilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  db.TransactionManager
}

func NewMongoFacilityRepository(cfg *config.Config) FacilityRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFacilityRepository{
		cfg:        cfg,
		collection: database.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoFacilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InTransaction(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoFacilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, facility); err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (r *mongoFacilityRepository) FindByID(ctx context.Context, id string) (*model.Facility, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var facility model.Facility
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&facility); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}
	return &facility, nil
}

func (r *mongoFacilityRepository) FindAll(ctx context.Context, filter model.FacilityFilter, limit int, offset int64) ([]*model.Facility, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer cursor.Close(ctx)

	var facilities []*model.Facility
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, fmt.Errorf("failed to decode facilities: %w", err)
	}
	return facilities, nil
}

func (r *mongoFacilityRepository) Count(ctx context.Context, filter model.FacilityFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count facilities: %w", err)
	}
	return count, nil
}

func (r *mongoFacilityRepository) Update(ctx context.Context, facility *model.Facility) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": facility.ID}, facility)
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, facility.ID)
	}
	return nil
}

func (r *mongoFacilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoFacilityRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildFilter(filter model.FacilityFilter) bson.M {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	return query
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "condobook/internal/bookings/errors"
	"condobook/pkg/config"
	"condobook/pkg/db"
	mongotx "condobook/pkg/db/mongo"
	"condobook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	claims     *mongo.Collection
	sequences  *mongo.Collection
	txManager  db.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         database,
		collection: database.Collection(CollectionName),
		claims:     database.Collection(ClaimsCollectionName),
		sequences:  database.Collection(SequencesCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds ctx by timeout unless it carries a running transaction,
// whose lifetime belongs to the session.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InTransaction(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	claims, err := model.ClaimsFor(booking, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to build slot claims: %w", err)
	}

	return r.ExecuteTransaction(ctx, func(ctx context.Context) error {
		ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
		defer cancel()

		if _, err := r.collection.InsertOne(ctx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		if len(claims) == 0 {
			return nil
		}

		docs := make([]any, len(claims))
		for i := range claims {
			docs[i] = claims[i]
		}
		if _, err := r.claims.InsertMany(ctx, docs); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return bookingserrors.ErrTimeConflict
			}
			return fmt.Errorf("failed to claim booking slots: %w", err)
		}
		return nil
	})
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if err := validateID(id); err != nil {
		return nil, err
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindOverlapping(
	ctx context.Context,
	facilityID, date, start, end string,
	statuses []model.BookingStatus,
) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"facility_id":  facilityID,
		"booking_date": date,
		"start_time":   bson.M{"$lt": end},
		"end_time":     bson.M{"$gt": start},
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "booking_date", Value: -1}, {Key: "start_time", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, buildSearchFilter(filter), opts)
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindElapsed(ctx context.Context, today, clock string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status": model.BookingStatusConfirmed,
		"$or": []bson.M{
			{"booking_date": bson.M{"$lt": today}},
			{"booking_date": today, "end_time": bson.M{"$lte": clock}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "booking_date", Value: 1}, {Key: "start_time", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func buildSearchFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.FacilityID != "" {
		filter["facility_id"] = f.FacilityID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.DateFrom != "" || f.DateTo != "" {
		dates := bson.M{}
		if f.DateFrom != "" {
			dates["$gte"] = f.DateFrom
		}
		if f.DateTo != "" {
			dates["$lte"] = f.DateTo
		}
		filter["booking_date"] = dates
	}
	return filter
}

func (r *mongoBookingRepository) UpdateStatus(
	ctx context.Context,
	id string,
	expected []model.BookingStatus,
	change model.StatusChange,
) (*model.Booking, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var updated *model.Booking
	err := r.ExecuteTransaction(ctx, func(ctx context.Context) error {
		ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
		defer cancel()

		filter := bson.M{"_id": id, "status": bson.M{"$in": expected}}
		booking, err := r.findOneAndSet(ctx, id, filter, statusFields(change))
		if err != nil {
			return err
		}

		if !change.Status.IsActive() {
			if _, err := r.claims.DeleteMany(ctx, bson.M{"booking_id": id}); err != nil {
				return fmt.Errorf("failed to release booking slots: %w", err)
			}
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *mongoBookingRepository) UpdateDetails(ctx context.Context, id string, update *model.BookingUpdate, at time.Time) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if err := validateID(id); err != nil {
		return nil, err
	}

	filter := bson.M{"_id": id, "status": model.BookingStatusPending}
	return r.findOneAndSet(ctx, id, filter, detailFields(update, at))
}

// findOneAndSet applies fields to the booking matched by filter. When the
// filter misses it tells a missing booking from one in another status.
func (r *mongoBookingRepository) findOneAndSet(ctx context.Context, id string, filter bson.M, fields map[string]any) (*model.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M(fields)}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if count == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrStatusChanged
}

func (r *mongoBookingRepository) NextSequence(ctx context.Context, year int) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"value": 1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var seq model.BookingSequence
	if err := r.sequences.FindOneAndUpdate(ctx, bson.M{"_id": year}, update, opts).Decode(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate booking sequence: %w", err)
	}
	return seq.Value, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

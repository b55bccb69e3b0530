package repository

import (
	"context"
	"errors"
	"time"

	bookingserrors "voicebooking/internal/bookings/errors"
	"voicebooking/pkg/config"
	mongotx "voicebooking/pkg/db/mongo"
	"voicebooking/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AppointmentRepository persists appointments. Create and Reschedule fail with
// ErrSlotConflict when another booked appointment holds the same date and time.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindByCaller(ctx context.Context, callerID string, includeCancelled bool) ([]*model.Appointment, error)
	FindRecent(ctx context.Context, limit int) ([]*model.Appointment, error)
	ExistsBooked(ctx context.Context, date, time string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
	Reschedule(ctx context.Context, id string, date, time, label string) (*model.Appointment, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(AppointmentsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, appointment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrSlotConflict
		}
		return storeError("failed to create appointment", err)
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var appointment model.Appointment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, storeError("failed to find appointment", err)
	}
	return &appointment, nil
}

func (r *mongoAppointmentRepository) FindByCaller(ctx context.Context, callerID string, includeCancelled bool) ([]*model.Appointment, error) {
	filter := bson.M{"user_id": callerID}
	if !includeCancelled {
		filter["status"] = bson.M{"$ne": model.StatusCancelled}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoAppointmentRepository) FindRecent(ctx context.Context, limit int) ([]*model.Appointment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("failed to find appointments", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, storeError("failed to decode appointments", err)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepository) ExistsBooked(ctx context.Context, date, hhmm string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"date": date, "time": hhmm, "status": model.StatusBooked}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, storeError("failed to check slot", err)
	}
	return count > 0, nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	return r.findOneAndSet(ctx, id, bson.M{"status": status})
}

func (r *mongoAppointmentRepository) Reschedule(ctx context.Context, id string, date, hhmm, label string) (*model.Appointment, error) {
	return r.findOneAndSet(ctx, id, bson.M{"date": date, "time": hhmm, "slot": label})
}

func (r *mongoAppointmentRepository) findOneAndSet(ctx context.Context, id string, fields bson.M) (*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var appointment model.Appointment
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrSlotConflict
		}
		return nil, storeError("failed to update appointment", err)
	}
	return &appointment, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

package repository

import (
	"context"
	"errors"
	"time"

	bookingserrors "voicebooking/internal/bookings/errors"
	"voicebooking/pkg/config"
	"voicebooking/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CallerRepository interface {
	// Create fails with ErrCallerExists when the contact number is taken.
	Create(ctx context.Context, caller *model.Caller) error
	FindByID(ctx context.Context, id string) (*model.Caller, error)
	FindByPhone(ctx context.Context, phone string) (*model.Caller, error)
	UpdateName(ctx context.Context, id string, name string) (*model.Caller, error)
}

type mongoCallerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCallerRepository(cfg *config.Config) CallerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCallerRepository{
		cfg:        cfg,
		collection: db.Collection(CallersCollection),
	}
}

func (r *mongoCallerRepository) Create(ctx context.Context, caller *model.Caller) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if caller.CreatedAt.IsZero() {
		caller.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := r.collection.InsertOne(ctx, caller); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrCallerExists
		}
		return storeError("failed to create caller", err)
	}
	return nil
}

func (r *mongoCallerRepository) FindByID(ctx context.Context, id string) (*model.Caller, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCallerRepository) FindByPhone(ctx context.Context, phone string) (*model.Caller, error) {
	return r.findOne(ctx, bson.M{"contact_number": phone})
}

func (r *mongoCallerRepository) findOne(ctx context.Context, filter bson.M) (*model.Caller, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var caller model.Caller
	if err := r.collection.FindOne(ctx, filter).Decode(&caller); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, storeError("failed to find caller", err)
	}
	return &caller, nil
}

func (r *mongoCallerRepository) UpdateName(ctx context.Context, id string, name string) (*model.Caller, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"name": name}}

	var caller model.Caller
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&caller)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, storeError("failed to update caller name", err)
	}
	return &caller, nil
}

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

type ConversationRepository interface {
	Create(ctx context.Context, summary *model.ConversationSummary) error
	// FindLatestBySession returns the most recently created summary of a session.
	FindLatestBySession(ctx context.Context, sessionID string) (*model.ConversationSummary, error)
	FindByCaller(ctx context.Context, callerID string, limit int) ([]*model.ConversationSummary, error)
}

type mongoConversationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoConversationRepository(cfg *config.Config) ConversationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConversationRepository{
		cfg:        cfg,
		collection: db.Collection(ConversationsCollection),
	}
}

func (r *mongoConversationRepository) Create(ctx context.Context, summary *model.ConversationSummary) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := r.collection.InsertOne(ctx, summary); err != nil {
		return storeError("failed to save conversation summary", err)
	}
	return nil
}

func (r *mongoConversationRepository) FindLatestBySession(ctx context.Context, sessionID string) (*model.ConversationSummary, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var summary model.ConversationSummary
	if err := r.collection.FindOne(ctx, bson.M{"session_id": sessionID}, opts).Decode(&summary); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, storeError("failed to find conversation summary", err)
	}
	return &summary, nil
}

func (r *mongoConversationRepository) FindByCaller(ctx context.Context, callerID string, limit int) ([]*model.ConversationSummary, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": callerID}, opts)
	if err != nil {
		return nil, storeError("failed to find conversation summaries", err)
	}
	defer cursor.Close(ctx)

	summaries := []*model.ConversationSummary{}
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, storeError("failed to decode conversation summaries", err)
	}
	return summaries, nil
}

package mongo

import (
	"context"
	"errors"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollectionName = "messages"

// mongoMessageRepository implements repository.MessageRepository using MongoDB.
type mongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new instance of mongoMessageRepository.
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messageCollectionName),
	}
}

// Create inserts a message.
func (r *mongoMessageRepository) Create(ctx context.Context, m *domain.Message) (primitive.ObjectID, error) {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetConversation retrieves the messages exchanged between two users in
// chronological order.
func (r *mongoMessageRepository) GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]domain.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"senderId": a, "receiverId": b},
		{"senderId": b, "receiverId": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead flags as read every message a user received from
// one sender.
func (r *mongoMessageRepository) MarkConversationRead(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"receiverId": receiverID, "senderId": senderID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// CountUnread counts messages a user has not read yet.
func (r *mongoMessageRepository) CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiverId": receiverID, "read": false})
}

// GetPartners lists the distinct users a given user has exchanged
// messages with.
func (r *mongoMessageRepository) GetPartners(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	sent, err := r.collection.Distinct(ctx, "receiverId", bson.M{"senderId": userID})
	if err != nil {
		return nil, err
	}
	received, err := r.collection.Distinct(ctx, "senderId", bson.M{"receiverId": userID})
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool)
	var partners []primitive.ObjectID
	for _, raw := range append(sent, received...) {
		id, ok := raw.(primitive.ObjectID)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		partners = append(partners, id)
	}
	return partners, nil
}

// EnsureMessageIndexes creates indexes for the messages collection.
func EnsureMessageIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "read", Value: 1}}},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

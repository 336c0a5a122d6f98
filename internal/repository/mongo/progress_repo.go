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

const (
	metricCollectionName      = "progress_metrics"
	achievementCollectionName = "achievements"
	noteCollectionName        = "nutritionist_notes"
)

// mongoProgressRepository implements repository.ProgressRepository using
// MongoDB, spanning metrics, achievements and notes.
type mongoProgressRepository struct {
	metrics      *mongo.Collection
	achievements *mongo.Collection
	notes        *mongo.Collection
}

// NewMongoProgressRepository creates a new instance of mongoProgressRepository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		metrics:      db.Collection(metricCollectionName),
		achievements: db.Collection(achievementCollectionName),
		notes:        db.Collection(noteCollectionName),
	}
}

// UpsertMetric inserts the metric or, when a row for the same
// (patient, date) already exists, overwrites its measured fields.
func (r *mongoProgressRepository) UpsertMetric(ctx context.Context, metric *domain.ProgressMetric) (primitive.ObjectID, error) {
	day := metric.Date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"patientId": metric.PatientID,
		"date":      bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)},
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"weight":      metric.Weight,
			"bodyFat":     metric.BodyFat,
			"muscleMass":  metric.MuscleMass,
			"waistCm":     metric.WaistCm,
			"hipCm":       metric.HipCm,
			"chestCm":     metric.ChestCm,
			"energyLevel": metric.EnergyLevel,
			"sleepHours":  metric.SleepHours,
			"mood":        metric.Mood,
			"notes":       metric.Notes,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"patientId": metric.PatientID,
			"date":      day,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved domain.ProgressMetric
	if err := r.metrics.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return primitive.NilObjectID, err
	}
	*metric = saved
	return saved.ID, nil
}

// GetMetric retrieves the metric of one calendar date.
func (r *mongoProgressRepository) GetMetric(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.ProgressMetric, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"patientId": patientID,
		"date":      bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)},
	}

	var m domain.ProgressMetric
	err := r.metrics.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetMetrics retrieves a patient's metrics ordered by date ascending.
// A limit of 0 returns everything; otherwise the newest N rows are
// returned, still in ascending order.
func (r *mongoProgressRepository) GetMetrics(ctx context.Context, patientID primitive.ObjectID, limit int) ([]domain.ProgressMetric, error) {
	filter := bson.M{"patientId": patientID}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if limit > 0 {
		// Take the newest rows, then restore ascending order.
		opts = options.Find().
			SetSort(bson.D{{Key: "date", Value: -1}}).
			SetLimit(int64(limit))
	}

	cursor, err := r.metrics.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var metrics []domain.ProgressMetric
	if err = cursor.All(ctx, &metrics); err != nil {
		return nil, err
	}
	if limit > 0 {
		for i, j := 0, len(metrics)-1; i < j; i, j = i+1, j-1 {
			metrics[i], metrics[j] = metrics[j], metrics[i]
		}
	}
	return metrics, nil
}

// GetEarliestMetric retrieves a patient's oldest metric row.
func (r *mongoProgressRepository) GetEarliestMetric(ctx context.Context, patientID primitive.ObjectID) (*domain.ProgressMetric, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: 1}})

	var m domain.ProgressMetric
	err := r.metrics.FindOne(ctx, bson.M{"patientId": patientID}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// DeleteMetric removes one metric. The patientId filter keeps patients
// from deleting each other's entries.
func (r *mongoProgressRepository) DeleteMetric(ctx context.Context, patientID, id primitive.ObjectID) error {
	result, err := r.metrics.DeleteOne(ctx, bson.M{"_id": id, "patientId": patientID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateAchievement inserts a new achievement.
func (r *mongoProgressRepository) CreateAchievement(ctx context.Context, a *domain.Achievement) (primitive.ObjectID, error) {
	a.ID = primitive.NewObjectID()
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now().UTC()
	}

	result, err := r.achievements.InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetAchievements retrieves a patient's achievements, newest first.
func (r *mongoProgressRepository) GetAchievements(ctx context.Context, patientID primitive.ObjectID) ([]domain.Achievement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "unlockedAt", Value: -1}})

	cursor, err := r.achievements.Find(ctx, bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.Achievement
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoProgressRepository) DeleteAchievement(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.achievements.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateNote inserts a nutritionist note.
func (r *mongoProgressRepository) CreateNote(ctx context.Context, note *domain.NutritionistNote) (primitive.ObjectID, error) {
	note.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.notes.InsertOne(ctx, note)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetNotes retrieves a patient's notes, newest first.
func (r *mongoProgressRepository) GetNotes(ctx context.Context, patientID primitive.ObjectID) ([]domain.NutritionistNote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.notes.Find(ctx, bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []domain.NutritionistNote
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteNote removes a note document.
func (r *mongoProgressRepository) DeleteNote(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.notes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressIndexes creates indexes for the progress collections.
func EnsureProgressIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(metricCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(achievementCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "unlockedAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(noteCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

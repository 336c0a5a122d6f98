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

const assignmentCollectionName = "plan_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository using MongoDB.
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new instance of mongoAssignmentRepository.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new plan assignment.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.PlanAssignment) (primitive.ObjectID, error) {
	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The partial unique index caught a second active assignment
			// for the same patient.
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an assignment by its ObjectID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanAssignment, error) {
	var a domain.PlanAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByPatientID retrieves a patient's assignment history, newest first.
func (r *mongoAssignmentRepository) GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.PlanAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assignedDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"patientId": patientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.PlanAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetActiveByPatientID retrieves the single active assignment for a patient.
func (r *mongoAssignmentRepository) GetActiveByPatientID(ctx context.Context, patientID primitive.ObjectID) (*domain.PlanAssignment, error) {
	var a domain.PlanAssignment
	filter := bson.M{"patientId": patientID, "status": domain.AssignmentActive}

	err := r.collection.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// PauseActiveByPatientID marks every active assignment of a patient as
// paused and returns how many were modified.
func (r *mongoAssignmentRepository) PauseActiveByPatientID(ctx context.Context, patientID primitive.ObjectID) (int64, error) {
	filter := bson.M{"patientId": patientID, "status": domain.AssignmentActive}
	update := bson.M{"$set": bson.M{
		"status":    domain.AssignmentPaused,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// CountActiveByPlanID counts active assignments referencing a plan.
func (r *mongoAssignmentRepository) CountActiveByPlanID(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"mealPlanId": planID, "status": domain.AssignmentActive})
}

// CountActiveByMenuID counts active assignments generated from a menu.
func (r *mongoAssignmentRepository) CountActiveByMenuID(ctx context.Context, menuID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"menuTemplateId": menuID, "status": domain.AssignmentActive})
}

// Update replaces an assignment document.
func (r *mongoAssignmentRepository) Update(ctx context.Context, assignment *domain.PlanAssignment) error {
	assignment.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": assignment.ID}, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an assignment document.
func (r *mongoAssignmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssignmentIndexes creates indexes for the plan_assignments
// collection. The partial unique index on patientId enforces at most
// one active assignment per patient at the database level.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "patientId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.AssignmentActive}),
		},
		{
			Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "assignedDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "mealPlanId", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

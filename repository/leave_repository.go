package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"geo-attendance/config"
	"geo-attendance/models"
)

type LeaveRepository interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.LeaveRequest, error)
	FindAll(ctx context.Context, status models.LeaveStatus) ([]models.LeaveWithEmployee, error)
	// FindOverlapping returns Pending or Approved requests of the employee whose
	// inclusive range intersects [start, end], excluding exclude when set.
	FindOverlapping(ctx context.Context, employeeID primitive.ObjectID, start, end time.Time, exclude *primitive.ObjectID) ([]models.LeaveRequest, error)
	FindApprovedCovering(ctx context.Context, date time.Time) ([]models.LeaveRequest, error)
	CountByStatus(ctx context.Context, status models.LeaveStatus) (int64, error)
	// Review moves a Pending request to status; false means it was not Pending.
	Review(ctx context.Context, id primitive.ObjectID, status models.LeaveStatus, remarks, reviewer string, at time.Time) (bool, error)
	DeleteIfPending(ctx context.Context, id, employeeID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type leaveRepository struct {
	collection *mongo.Collection
}

func NewLeaveRepository(db *mongo.Database) LeaveRepository {
	return &leaveRepository{collection: db.Collection(config.LeaveRequestCollection)}
}

var newestFirst = bson.D{{Key: "applied_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *leaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if leave.ID.IsZero() {
		leave.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, leave); err != nil {
		return wrapWriteErr("failed to create leave request", err)
	}
	return nil
}

func (r *leaveRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LeaveRequest, error) {
	var leave models.LeaveRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&leave); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find leave request: %w", err)
	}
	return &leave, nil
}

func (r *leaveRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.LeaveRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find leave requests: %w", err)
	}
	defer cursor.Close(ctx)

	leaves := []models.LeaveRequest{}
	if err = cursor.All(ctx, &leaves); err != nil {
		return nil, fmt.Errorf("failed to decode leave requests: %w", err)
	}
	return leaves, nil
}

func (r *leaveRepository) FindByEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.LeaveRequest, error) {
	return r.find(ctx, bson.M{"employee_id": employeeID}, newestFirst)
}

func (r *leaveRepository) FindAll(ctx context.Context, status models.LeaveStatus) ([]models.LeaveWithEmployee, error) {
	match := bson.M{}
	if status != "" {
		match["status"] = status
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: config.EmployeeCollection},
			{Key: "localField", Value: "employee_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "employee_details"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$employee_details"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "full_name", Value: "$employee_details.full_name"},
			{Key: "email", Value: "$employee_details.email"},
			{Key: "department", Value: "$employee_details.department"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "employee_details", Value: 0}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leave requests with employee: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.LeaveWithEmployee{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode leave requests with employee: %w", err)
	}
	return results, nil
}

var blockingStatuses = bson.A{models.LeavePending, models.LeaveApproved}

func (r *leaveRepository) FindOverlapping(ctx context.Context, employeeID primitive.ObjectID, start, end time.Time, exclude *primitive.ObjectID) ([]models.LeaveRequest, error) {
	filter := bson.M{
		"employee_id": employeeID,
		"status":      bson.M{"$in": blockingStatuses},
		"start_date":  bson.M{"$lte": end},
		"end_date":    bson.M{"$gte": start},
	}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	return r.find(ctx, filter, bson.D{{Key: "start_date", Value: 1}})
}

func (r *leaveRepository) FindApprovedCovering(ctx context.Context, date time.Time) ([]models.LeaveRequest, error) {
	filter := bson.M{
		"status":     models.LeaveApproved,
		"start_date": bson.M{"$lte": date},
		"end_date":   bson.M{"$gte": date},
	}
	return r.find(ctx, filter, bson.D{{Key: "start_date", Value: 1}})
}

func (r *leaveRepository) CountByStatus(ctx context.Context, status models.LeaveStatus) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count leave requests: %w", err)
	}
	return n, nil
}

func (r *leaveRepository) Review(ctx context.Context, id primitive.ObjectID, status models.LeaveStatus, remarks, reviewer string, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "status": models.LeavePending}
	update := bson.M{"$set": bson.M{
		"status":        status,
		"admin_remarks": remarks,
		"reviewed_by":   reviewer,
		"reviewed_at":   at,
		"updated_at":    at,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to review leave request: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *leaveRepository) DeleteIfPending(ctx context.Context, id, employeeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, "employee_id": employeeID, "status": models.LeavePending}
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete leave request: %w", err)
	}
	return res.DeletedCount == 1, nil
}

func (r *leaveRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	return nil
}

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

type AttendanceRepository interface {
	// Create fails with ErrDuplicateKey when the employee already has a
	// record for that date.
	Create(ctx context.Context, attendance *models.Attendance) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date time.Time) (*models.Attendance, error)
	FindByEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Attendance, error)
	FindByDate(ctx context.Context, date time.Time) ([]models.Attendance, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]models.AttendanceWithEmployee, error)
	FindPaginated(ctx context.Context, page, limit int64) ([]models.AttendanceWithEmployee, int64, error)
	SummaryByEmployee(ctx context.Context, employeeID primitive.ObjectID) (models.StatusCounts, error)
	CountByDate(ctx context.Context, date time.Time, statuses ...models.AttendanceStatus) (int64, error)
	// SetCheckOut succeeds only while check_out_time is still unset.
	SetCheckOut(ctx context.Context, id primitive.ObjectID, checkOut time.Time, workingMinutes int) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AttendanceStatus, remarks *string) (*models.Attendance, error)
}

type attendanceRepository struct {
	collection *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) AttendanceRepository {
	return &attendanceRepository{collection: db.Collection(config.AttendanceCollection)}
}

var historySort = bson.D{{Key: "date", Value: -1}, {Key: "check_in_time", Value: -1}}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID.IsZero() {
		attendance.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, attendance); err != nil {
		return wrapWriteErr("failed to create attendance", err)
	}
	return nil
}

func (r *attendanceRepository) findOne(ctx context.Context, filter bson.M) (*models.Attendance, error) {
	var attendance models.Attendance
	if err := r.collection.FindOne(ctx, filter).Decode(&attendance); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find attendance: %w", err)
	}
	return &attendance, nil
}

func (r *attendanceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *attendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID primitive.ObjectID, date time.Time) (*models.Attendance, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID, "date": date})
}

func (r *attendanceRepository) find(ctx context.Context, filter bson.M) ([]models.Attendance, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(historySort))
	if err != nil {
		return nil, fmt.Errorf("failed to find attendances: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.Attendance{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode attendances: %w", err)
	}
	return records, nil
}

func (r *attendanceRepository) FindByEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Attendance, error) {
	return r.find(ctx, bson.M{"employee_id": employeeID})
}

func (r *attendanceRepository) FindByDate(ctx context.Context, date time.Time) ([]models.Attendance, error) {
	return r.find(ctx, bson.M{"date": date})
}

// employeeJoin appends the employee fields to each attendance document.
func employeeJoin() mongo.Pipeline {
	return mongo.Pipeline{
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
			{Key: "designation", Value: "$employee_details.designation"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "employee_details", Value: 0}}}},
	}
}

func (r *attendanceRepository) aggregateWithEmployee(ctx context.Context, pipeline mongo.Pipeline) ([]models.AttendanceWithEmployee, error) {
	cursor, err := r.collection.Aggregate(ctx, append(pipeline, employeeJoin()...))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendances with employee: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.AttendanceWithEmployee{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode attendances with employee: %w", err)
	}
	return results, nil
}

func (r *attendanceRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.AttendanceWithEmployee, error) {
	return r.aggregateWithEmployee(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "check_in_time", Value: 1}}}},
	})
}

func (r *attendanceRepository) FindPaginated(ctx context.Context, page, limit int64) ([]models.AttendanceWithEmployee, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	results, err := r.aggregateWithEmployee(ctx, mongo.Pipeline{
		{{Key: "$sort", Value: historySort}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func countIf(status models.AttendanceStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
}

func (r *attendanceRepository) SummaryByEmployee(ctx context.Context, employeeID primitive.ObjectID) (models.StatusCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"employee_id": employeeID}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total_days":   bson.M{"$sum": 1},
			"present_days": countIf(models.StatusPresent),
			"leave_days":   countIf(models.StatusLeave),
			"half_days":    countIf(models.StatusHalfDay),
			"absent_days":  countIf(models.StatusAbsent),
		}}},
	}

	var counts models.StatusCounts
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return counts, fmt.Errorf("failed to aggregate attendance summary: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		if err = cursor.Decode(&counts); err != nil {
			return counts, fmt.Errorf("failed to decode attendance summary: %w", err)
		}
	}
	if err = cursor.Err(); err != nil {
		return counts, fmt.Errorf("failed to read attendance summary: %w", err)
	}
	return counts, nil
}

func (r *attendanceRepository) CountByDate(ctx context.Context, date time.Time, statuses ...models.AttendanceStatus) (int64, error) {
	filter := bson.M{"date": date}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendances: %w", err)
	}
	return n, nil
}

func (r *attendanceRepository) SetCheckOut(ctx context.Context, id primitive.ObjectID, checkOut time.Time, workingMinutes int) (bool, error) {
	filter := bson.M{"_id": id, "check_out_time": nil}
	update := bson.M{"$set": bson.M{
		"check_out_time":  checkOut,
		"working_minutes": workingMinutes,
		"updated_at":      checkOut,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to set check-out: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *attendanceRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AttendanceStatus, remarks *string) (*models.Attendance, error) {
	set := bson.M{"status": status, "updated_at": time.Now()}
	if remarks != nil {
		set["remarks"] = *remarks
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var attendance models.Attendance
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&attendance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update attendance status: %w", err)
	}
	return &attendance, nil
}

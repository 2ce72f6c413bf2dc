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

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	FindAll(ctx context.Context, activeOnly bool) ([]models.Employee, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
	// CountByDepartment groups active employees by department, largest first.
	CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, isActive bool) (*models.Employee, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, address *models.Address, contact *models.EmergencyContact) (*models.Employee, error)
	// BumpLeaveVersion increments leave_version only if it still equals expected.
	BumpLeaveVersion(ctx context.Context, id primitive.ObjectID, expected int64) (bool, error)
}

type employeeRepository struct {
	collection *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) EmployeeRepository {
	return &employeeRepository{collection: db.Collection(config.EmployeeCollection)}
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID.IsZero() {
		employee.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, employee); err != nil {
		return wrapWriteErr("failed to create employee", err)
	}
	return nil
}

func (r *employeeRepository) findOne(ctx context.Context, filter bson.M) (*models.Employee, error) {
	var employee models.Employee
	err := r.collection.FindOne(ctx, filter).Decode(&employee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	employee, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by id: %w", err)
	}
	return employee, nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	employee, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by email: %w", err)
	}
	return employee, nil
}

func activeFilter(activeOnly bool) bson.M {
	if activeOnly {
		return bson.M{"is_active": true}
	}
	return bson.M{}
}

func (r *employeeRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}})
	cursor, err := r.collection.Find(ctx, activeFilter(activeOnly), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer cursor.Close(ctx)

	employees := []models.Employee{}
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	return employees, nil
}

func (r *employeeRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, activeFilter(activeOnly))
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

func (r *employeeRepository) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$department", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate departments: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.DepartmentCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode department counts: %w", err)
	}
	return counts, nil
}

func (r *employeeRepository) updateOne(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Employee, error) {
	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var employee models.Employee
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&employee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, isActive bool) (*models.Employee, error) {
	employee, err := r.updateOne(ctx, id, bson.M{"is_active": isActive})
	if err != nil {
		return nil, fmt.Errorf("failed to update employee status: %w", err)
	}
	return employee, nil
}

func (r *employeeRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, address *models.Address, contact *models.EmergencyContact) (*models.Employee, error) {
	set := bson.M{}
	if address != nil {
		set["address"] = address
	}
	if contact != nil {
		set["emergency_contact"] = contact
	}
	employee, err := r.updateOne(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("failed to update employee profile: %w", err)
	}
	return employee, nil
}

func (r *employeeRepository) BumpLeaveVersion(ctx context.Context, id primitive.ObjectID, expected int64) (bool, error) {
	filter := bson.M{"_id": id, "leave_version": expected}
	update := bson.M{"$inc": bson.M{"leave_version": 1}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to bump leave version: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"geo-attendance/config"
	"geo-attendance/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindAll(ctx context.Context) ([]models.Notification, error)
	// FindForEmployee returns broadcasts plus notifications targeted at the employee.
	FindForEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, employeeID primitive.ObjectID) (bool, error)
}

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{collection: db.Collection(config.NotificationCollection)}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.ReadBy == nil {
		notification.ReadBy = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return wrapWriteErr("failed to create notification", err)
	}
	return nil
}

func (r *notificationRepository) find(ctx context.Context, filter bson.M) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) FindAll(ctx context.Context) ([]models.Notification, error) {
	return r.find(ctx, bson.M{})
}

func visibleTo(employeeID primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"target": models.NotifyAll},
		bson.M{"target": models.NotifyEmployee, "employee_id": employeeID},
	}}
}

func (r *notificationRepository) FindForEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Notification, error) {
	return r.find(ctx, visibleTo(employeeID))
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, employeeID primitive.ObjectID) (bool, error) {
	filter := visibleTo(employeeID)
	filter["_id"] = id
	update := bson.M{"$addToSet": bson.M{"read_by": employeeID}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return res.MatchedCount == 1, nil
}

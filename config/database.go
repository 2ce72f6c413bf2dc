package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	EmployeeCollection     = "employees"
	AdminCollection        = "admins"
	AttendanceCollection   = "attendances"
	LeaveRequestCollection = "leave_requests"
	OfficeCollection       = "office_locations"
	NotificationCollection = "notifications"
)

const connectTimeout = 10 * time.Second

// MongoConnect opens a client and verifies it with a primary ping.
func MongoConnect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func DisconnectDB(client *mongo.Client, log *slog.Logger) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error("Error disconnecting from MongoDB", "error", err)
		return
	}
	log.Info("Disconnected from MongoDB")
}

// IndexModels lists the indexes each collection needs.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		EmployeeCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
		},
		AdminCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
		AttendanceCollection: {
			{
				Keys:    bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_employee_day"),
			},
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		LeaveRequestCollection: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_date", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "applied_at", Value: -1}}},
		},
		OfficeCollection: {
			{Keys: bson.D{{Key: "coordinates", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "version", Value: -1}}, Options: options.Index().SetUnique(true).SetName("uniq_version")},
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "version", Value: -1}}},
		},
		NotificationCollection: {
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "employee_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}

// InitDatabase creates every index; it is idempotent.
func InitDatabase(ctx context.Context, db *mongo.Database) error {
	for name, models := range IndexModels() {
		if len(models) == 0 {
			continue
		}
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

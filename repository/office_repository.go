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

type OfficeRepository interface {
	Insert(ctx context.Context, office *models.OfficeLocation) error
	// FindActive returns the active entry with the highest version, newest first on ties.
	FindActive(ctx context.Context) (*models.OfficeLocation, error)
	LatestVersion(ctx context.Context) (int64, error)
	DeactivateExcept(ctx context.Context, id primitive.ObjectID) error
}

type officeRepository struct {
	collection *mongo.Collection
}

func NewOfficeRepository(db *mongo.Database) OfficeRepository {
	return &officeRepository{collection: db.Collection(config.OfficeCollection)}
}

var latestFirst = bson.D{{Key: "version", Value: -1}, {Key: "created_at", Value: -1}}

func (r *officeRepository) Insert(ctx context.Context, office *models.OfficeLocation) error {
	if office.ID.IsZero() {
		office.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, office); err != nil {
		return wrapWriteErr("failed to insert office location", err)
	}
	return nil
}

func (r *officeRepository) findLatest(ctx context.Context, filter bson.M) (*models.OfficeLocation, error) {
	var office models.OfficeLocation
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetSort(latestFirst)).Decode(&office)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find office location: %w", err)
	}
	return &office, nil
}

func (r *officeRepository) FindActive(ctx context.Context) (*models.OfficeLocation, error) {
	return r.findLatest(ctx, bson.M{"is_active": true})
}

func (r *officeRepository) LatestVersion(ctx context.Context) (int64, error) {
	office, err := r.findLatest(ctx, bson.M{})
	if err != nil || office == nil {
		return 0, err
	}
	return office.Version, nil
}

func (r *officeRepository) DeactivateExcept(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": bson.M{"$ne": id}, "is_active": true}
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to deactivate office locations: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"geo-attendance/config"
	"geo-attendance/models"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

type adminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) AdminRepository {
	return &adminRepository{collection: db.Collection(config.AdminCollection)}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, admin); err != nil {
		return wrapWriteErr("failed to create admin", err)
	}
	return nil
}

func (r *adminRepository) find(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var admin models.Admin
	if err := r.collection.FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &admin, nil
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.find(ctx, bson.M{"email": email})
}

func (r *adminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.find(ctx, bson.M{"_id": id})
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultRadiusMeters = 100.0
	DefaultWorkdayRule  = "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
)

// GeoPoint is a GeoJSON point; Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

type OfficeLocation struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	Coordinates         GeoPoint           `json:"coordinates" bson:"coordinates"`
	AllowedRadiusMeters float64            `json:"allowedRadiusMeters" bson:"allowed_radius_meters"`
	IsActive            bool               `json:"isActive" bson:"is_active"`
	Version             int64              `json:"version" bson:"version"`
	WorkdayRule         string             `json:"workdayRule" bson:"workday_rule"`
	CreatedBy           string             `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (o *OfficeLocation) Latitude() float64 {
	if len(o.Coordinates.Coordinates) < 2 {
		return 0
	}
	return o.Coordinates.Coordinates[1]
}

func (o *OfficeLocation) Longitude() float64 {
	if len(o.Coordinates.Coordinates) < 2 {
		return 0
	}
	return o.Coordinates.Coordinates[0]
}

type OfficeLocationPayload struct {
	Name                string   `json:"name" validate:"required,max=120"`
	Latitude            *float64 `json:"latitude" validate:"required,latitude"`
	Longitude           *float64 `json:"longitude" validate:"required,longitude"`
	AllowedRadiusMeters *float64 `json:"allowedRadiusMeters" validate:"omitempty,gt=0,lte=100000"`
	WorkdayRule         string   `json:"workdayRule" validate:"omitempty,max=200"`
}

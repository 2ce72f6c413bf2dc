// Package repository holds the persistence interfaces and their MongoDB
// implementations. Finders return (nil, nil) when nothing matches.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrDuplicateKey is returned when a unique index rejects a write.
var ErrDuplicateKey = errors.New("duplicate key")

func wrapWriteErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Pinger checks that the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type mongoPinger struct {
	client *mongo.Client
}

func NewMongoPinger(client *mongo.Client) Pinger {
	return &mongoPinger{client: client}
}

func (p *mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// Repositories bundles one implementation of every collection.
type Repositories struct {
	Employees     EmployeeRepository
	Admins        AdminRepository
	Attendances   AttendanceRepository
	Leaves        LeaveRepository
	Offices       OfficeRepository
	Notifications NotificationRepository
	Pinger        Pinger
}

// NewMongoRepositories binds every repository to db.
func NewMongoRepositories(client *mongo.Client, db *mongo.Database) Repositories {
	return Repositories{
		Employees:     NewEmployeeRepository(db),
		Admins:        NewAdminRepository(db),
		Attendances:   NewAttendanceRepository(db),
		Leaves:        NewLeaveRepository(db),
		Offices:       NewOfficeRepository(db),
		Notifications: NewNotificationRepository(db),
		Pinger:        NewMongoPinger(client),
	}
}

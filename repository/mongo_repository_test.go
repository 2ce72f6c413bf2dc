package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"geo-attendance/models"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func TestAttendanceRepository_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := &models.Attendance{EmployeeID: primitive.NewObjectID(), Date: time.Now(), Status: models.StatusPresent}
		require.NoError(mt, repo.Create(context.Background(), rec))
		assert.False(mt, rec.ID.IsZero())
	})

	mt.Run("duplicate day", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.Create(context.Background(), &models.Attendance{EmployeeID: primitive.NewObjectID()})
		require.Error(mt, err)
		assert.True(mt, errors.Is(err, ErrDuplicateKey))
	})
}

func TestAttendanceRepository_FindByEmployeeAndDate(t *testing.T) {
	mt := newMock(t)
	employeeID := primitive.NewObjectID()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.attendances", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "employee_id", Value: employeeID},
			{Key: "date", Value: day},
			{Key: "check_in_time", Value: day.Add(9 * time.Hour)},
			{Key: "check_out_time", Value: nil},
			{Key: "status", Value: "Present"},
		}))

		rec, err := repo.FindByEmployeeAndDate(context.Background(), employeeID, day)
		require.NoError(mt, err)
		require.NotNil(mt, rec)
		assert.Equal(mt, id, rec.ID)
		assert.Nil(mt, rec.CheckOutTime)
		assert.Equal(mt, models.StatusPresent, rec.Status)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.attendances", mtest.FirstBatch))

		rec, err := repo.FindByEmployeeAndDate(context.Background(), employeeID, day)
		require.NoError(mt, err)
		assert.Nil(mt, rec)
	})
}

func TestAttendanceRepository_SetCheckOut(t *testing.T) {
	mt := newMock(t)

	mt.Run("first check-out wins", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))

		ok, err := repo.SetCheckOut(context.Background(), primitive.NewObjectID(), time.Now(), 480)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("already checked out", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))

		ok, err := repo.SetCheckOut(context.Background(), primitive.NewObjectID(), time.Now(), 480)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestAttendanceRepository_SummaryByEmployee(t *testing.T) {
	mt := newMock(t)

	mt.Run("counts", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.attendances", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_days", Value: int32(10)},
			{Key: "present_days", Value: int32(7)},
			{Key: "leave_days", Value: int32(1)},
			{Key: "half_days", Value: int32(1)},
			{Key: "absent_days", Value: int32(1)},
		}))

		counts, err := repo.SummaryByEmployee(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusCounts{Total: 10, Present: 7, Leave: 1, HalfDay: 1, Absent: 1}, counts)
	})

	mt.Run("no records", func(mt *mtest.T) {
		repo := NewAttendanceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.attendances", mtest.FirstBatch))

		counts, err := repo.SummaryByEmployee(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Zero(mt, counts.Total)
	})
}

func TestLeaveRepository_ConditionalTransitions(t *testing.T) {
	mt := newMock(t)

	mt.Run("review pending", func(mt *mtest.T) {
		repo := NewLeaveRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))

		ok, err := repo.Review(context.Background(), primitive.NewObjectID(), models.LeaveApproved, "ok", "admin@example.com", time.Now())
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("review already reviewed", func(mt *mtest.T) {
		repo := NewLeaveRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))

		ok, err := repo.Review(context.Background(), primitive.NewObjectID(), models.LeaveRejected, "", "admin@example.com", time.Now())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("delete if pending", func(mt *mtest.T) {
		repo := NewLeaveRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		ok, err := repo.DeleteIfPending(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("overlap query", func(mt *mtest.T) {
		repo := NewLeaveRepository(mt.DB)
		start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.leave_requests", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "status", Value: "Pending"},
			{Key: "start_date", Value: start},
			{Key: "end_date", Value: start.AddDate(0, 0, 2)},
		}))

		leaves, err := repo.FindOverlapping(context.Background(), primitive.NewObjectID(), start, start, nil)
		require.NoError(mt, err)
		require.Len(mt, leaves, 1)
		assert.Equal(mt, models.LeavePending, leaves[0].Status)
	})
}

func TestEmployeeRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewEmployeeRepository(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := repo.Create(context.Background(), &models.Employee{Email: "a@b.co"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("bump leave version conflict", func(mt *mtest.T) {
		repo := NewEmployeeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))

		ok, err := repo.BumpLeaveVersion(context.Background(), primitive.NewObjectID(), 3)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("count by department", func(mt *mtest.T) {
		repo := NewEmployeeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.employees", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Engineering"}, {Key: "count", Value: int64(4)}},
			bson.D{{Key: "_id", Value: "Sales"}, {Key: "count", Value: int64(1)}},
		))

		counts, err := repo.CountByDepartment(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []models.DepartmentCount{
			{Department: "Engineering", Count: 4},
			{Department: "Sales", Count: 1},
		}, counts)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewEmployeeRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "email", Value: "a@b.co"},
				{Key: "is_active", Value: false},
			}},
		})

		emp, err := repo.UpdateStatus(context.Background(), id, false)
		require.NoError(mt, err)
		require.NotNil(mt, emp)
		assert.False(mt, emp.IsActive)
	})
}

func TestOfficeRepository_FindActive(t *testing.T) {
	mt := newMock(t)

	mt.Run("decodes geojson", func(mt *mtest.T) {
		repo := NewOfficeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.office_locations", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "HQ"},
			{Key: "coordinates", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{77.5946, 12.9716}},
			}},
			{Key: "allowed_radius_meters", Value: 150.0},
			{Key: "is_active", Value: true},
			{Key: "version", Value: int64(4)},
		}))

		office, err := repo.FindActive(context.Background())
		require.NoError(mt, err)
		require.NotNil(mt, office)
		assert.InDelta(mt, 12.9716, office.Latitude(), 1e-9)
		assert.InDelta(mt, 77.5946, office.Longitude(), 1e-9)
		assert.Equal(mt, int64(4), office.Version)
	})

	mt.Run("none configured", func(mt *mtest.T) {
		repo := NewOfficeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.office_locations", mtest.FirstBatch))

		office, err := repo.FindActive(context.Background())
		require.NoError(mt, err)
		assert.Nil(mt, office)
	})
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	mt := newMock(t)

	mt.Run("not visible", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))

		ok, err := repo.MarkRead(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/geo"
	"geo-attendance/repository"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

type AttendanceService struct {
	attendances repository.AttendanceRepository
	employees   repository.EmployeeRepository
	leaves      repository.LeaveRepository
	offices     *OfficeService
	rt          Runtime
}

func NewAttendanceService(
	attendances repository.AttendanceRepository,
	employees repository.EmployeeRepository,
	leaves repository.LeaveRepository,
	offices *OfficeService,
	rt Runtime,
) *AttendanceService {
	return &AttendanceService{
		attendances: attendances,
		employees:   employees,
		leaves:      leaves,
		offices:     offices,
		rt:          rt.withDefaults(),
	}
}

func errAlreadyCheckedIn() *apperror.Error {
	return apperror.Conflict(apperror.CodeAlreadyCheckedIn, "Already checked in today")
}

// CheckIn records today's arrival if the employee is inside the office geofence.
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID primitive.ObjectID, lat, lon *float64) (*models.Attendance, error) {
	today := s.rt.today()

	existing, err := s.attendances.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return nil, apperror.Internal("failed to load today's attendance", err)
	}
	if DeriveState(existing) != NoRecord {
		s.rt.Metrics.CheckIns.WithLabelValues("duplicate").Inc()
		return nil, errAlreadyCheckedIn()
	}

	if lat == nil || lon == nil {
		s.rt.Metrics.CheckIns.WithLabelValues("rejected").Inc()
		return nil, apperror.Validation(apperror.CodeLocationRequired, "Location is required to check in")
	}
	point := geo.Point{Lat: *lat, Lon: *lon}
	if err = geo.Validate(point); err != nil {
		s.rt.Metrics.CheckIns.WithLabelValues("rejected").Inc()
		return nil, apperror.Validation(apperror.CodeInvalidLocation, err.Error())
	}

	office, err := s.offices.Active(ctx)
	if err != nil {
		return nil, err
	}
	if office == nil {
		s.rt.Metrics.CheckIns.WithLabelValues("rejected").Inc()
		return nil, apperror.Dependency(apperror.CodeOfficeNotConfigured, "Office location is not configured")
	}

	center := geo.Point{Lat: office.Latitude(), Lon: office.Longitude()}
	inside, distance := geo.Within(center, point, office.AllowedRadiusMeters)
	s.rt.Metrics.GeofenceDistance.Observe(distance)
	if !inside {
		s.rt.Metrics.CheckIns.WithLabelValues("outside_geofence").Inc()
		rounded := math.Round(distance)
		return nil, apperror.Forbidden(apperror.CodeOutsideGeofence,
			fmt.Sprintf("You are %.0fm away from the office. Allowed radius is %.0fm.", rounded, office.AllowedRadiusMeters)).
			WithDetail("distance", rounded).
			WithDetail("allowedRadius", office.AllowedRadiusMeters)
	}

	now := s.rt.now()
	rec := &models.Attendance{
		EmployeeID:   employeeID,
		Date:         today,
		CheckInTime:  &now,
		CheckOutTime: nil,
		Status:       models.StatusPresent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.attendances.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.rt.Metrics.CheckIns.WithLabelValues("duplicate").Inc()
			return nil, errAlreadyCheckedIn()
		}
		return nil, apperror.Internal("failed to save check-in", err)
	}

	s.rt.Metrics.CheckIns.WithLabelValues("accepted").Inc()
	s.rt.Log.InfoContext(ctx, "employee checked in",
		"employee_id", employeeID.Hex(), "distance_m", math.Round(distance), "office_version", office.Version)
	return rec, nil
}

// CheckOut closes today's open record and derives the working minutes.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID primitive.ObjectID) (*models.Attendance, error) {
	today := s.rt.today()

	rec, err := s.attendances.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return nil, apperror.Internal("failed to load today's attendance", err)
	}

	switch DeriveState(rec) {
	case NoRecord, Closed:
		s.rt.Metrics.CheckOuts.WithLabelValues("no_check_in").Inc()
		return nil, apperror.Validation(apperror.CodeNoCheckIn, "No check-in found for today")
	case CheckedOut:
		s.rt.Metrics.CheckOuts.WithLabelValues("already_checked_out").Inc()
		return nil, apperror.Conflict(apperror.CodeAlreadyCheckedOut, "Already checked out today")
	}

	now := s.rt.now()
	minutes := ComputeWorkingMinutes(*rec.CheckInTime, now)
	ok, err := s.attendances.SetCheckOut(ctx, rec.ID, now, minutes)
	if err != nil {
		return nil, apperror.Internal("failed to save check-out", err)
	}
	if !ok {
		// A concurrent request closed the record first.
		s.rt.Metrics.CheckOuts.WithLabelValues("already_checked_out").Inc()
		return nil, apperror.Conflict(apperror.CodeAlreadyCheckedOut, "Already checked out today")
	}

	rec.CheckOutTime = &now
	rec.WorkingMinutes = minutes
	rec.UpdatedAt = now
	s.rt.Metrics.CheckOuts.WithLabelValues("accepted").Inc()
	s.rt.Log.InfoContext(ctx, "employee checked out", "employee_id", employeeID.Hex(), "working_minutes", minutes)
	return rec, nil
}

// History lists the employee's records, newest date first.
func (s *AttendanceService) History(ctx context.Context, employeeID primitive.ObjectID) ([]models.Attendance, error) {
	records, err := s.attendances.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Internal("failed to fetch attendance", err)
	}
	return records, nil
}

func (s *AttendanceService) Summary(ctx context.Context, employeeID primitive.ObjectID) (*models.AttendanceSummary, error) {
	counts, err := s.attendances.SummaryByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Internal("failed to fetch attendance summary", err)
	}
	return &models.AttendanceSummary{
		TotalDays:    counts.Total,
		PresentDays:  counts.Present,
		PresentRatio: PresentRatio(counts.Present, counts.Total),
		Breakdown: models.SummaryBreakdown{
			LeaveDays:  counts.Leave,
			HalfDays:   counts.HalfDay,
			AbsentDays: counts.Absent,
		},
	}, nil
}

// List pages through every record joined with its employee. limit is capped
// at MaxPageLimit.
func (s *AttendanceService) List(ctx context.Context, page, limit int64) (*models.PaginatedAttendance, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	// Keeps the row offset (page-1)*limit from overflowing.
	if maxPage := math.MaxInt64/limit - 1; page > maxPage {
		page = maxPage
	}

	rows, total, err := s.attendances.FindPaginated(ctx, page, limit)
	if err != nil {
		return nil, apperror.Internal("failed to fetch attendance", err)
	}
	return &models.PaginatedAttendance{
		Data:       rows,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Override sets the administrative status of a record. Timestamps and
// working minutes are left as they are.
func (s *AttendanceService) Override(ctx context.Context, id primitive.ObjectID, status string, remarks *string) (*models.Attendance, error) {
	st := models.AttendanceStatus(status)
	if !st.Valid() {
		return nil, apperror.Validation(apperror.CodeInvalidStatus, "Invalid attendance status")
	}
	rec, err := s.attendances.UpdateStatus(ctx, id, st, remarks)
	if err != nil {
		return nil, apperror.Internal("failed to update attendance", err)
	}
	if rec == nil {
		return nil, apperror.NotFound("Attendance record not found")
	}
	s.rt.Log.InfoContext(ctx, "attendance status overridden", "attendance_id", id.Hex(), "status", st)
	return rec, nil
}

// Today lists every active employee with their record for today; employees
// without one are reported as Absent.
func (s *AttendanceService) Today(ctx context.Context) ([]models.DailyAttendanceRow, error) {
	today := s.rt.today()

	employees, err := s.employees.FindAll(ctx, true)
	if err != nil {
		return nil, apperror.Internal("failed to fetch employees", err)
	}
	records, err := s.attendances.FindByDate(ctx, today)
	if err != nil {
		return nil, apperror.Internal("failed to fetch today's attendance", err)
	}
	byEmployee := make(map[primitive.ObjectID]models.Attendance, len(records))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = rec
	}

	rows := make([]models.DailyAttendanceRow, 0, len(employees))
	for _, emp := range employees {
		row := models.DailyAttendanceRow{
			EmployeeID:  emp.ID,
			FullName:    emp.FullName,
			Email:       emp.Email,
			Department:  emp.Department,
			Designation: emp.Designation,
			Status:      models.StatusAbsent,
		}
		if rec, ok := byEmployee[emp.ID]; ok {
			id := rec.ID
			row.AttendanceID = &id
			row.Status = rec.Status
			row.CheckInTime = rec.CheckInTime
			row.CheckOutTime = rec.CheckOutTime
			row.WorkingMinutes = rec.WorkingMinutes
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EmployeeHistory is the admin view of one employee's records.
func (s *AttendanceService) EmployeeHistory(ctx context.Context, employeeID primitive.ObjectID) (*models.Employee, []models.Attendance, error) {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, nil, apperror.Internal("failed to fetch employee", err)
	}
	if emp == nil {
		return nil, nil, apperror.NotFound("Employee not found")
	}
	records, err := s.History(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	return emp, records, nil
}

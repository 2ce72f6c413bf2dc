package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	util "geo-attendance/pkg/utils"
	"geo-attendance/repository"
)

// leaveCommitAttempts bounds the version re-reads after a lost race that
// turned out not to overlap.
const leaveCommitAttempts = 5

type LeaveService struct {
	leaves    repository.LeaveRepository
	employees repository.EmployeeRepository
	rt        Runtime
}

func NewLeaveService(leaves repository.LeaveRepository, employees repository.EmployeeRepository, rt Runtime) *LeaveService {
	return &LeaveService{leaves: leaves, employees: employees, rt: rt.withDefaults()}
}

type ApplyInput struct {
	LeaveType string
	StartDate string
	EndDate   string
	Reason    string
}

func errLeaveOverlap() *apperror.Error {
	return apperror.Conflict(apperror.CodeLeaveOverlap, "You already have a leave in this date range")
}

// Apply creates a Pending request unless it overlaps a Pending or Approved
// one. Overlap is checked again after the insert under a per-employee
// version compare-and-swap, so two concurrent overlapping requests cannot
// both survive.
func (s *LeaveService) Apply(ctx context.Context, employeeID primitive.ObjectID, in ApplyInput) (*models.LeaveRequest, error) {
	reason := strings.TrimSpace(in.Reason)
	if in.LeaveType == "" || in.StartDate == "" || in.EndDate == "" || reason == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "All fields are required")
	}
	leaveType := models.LeaveType(in.LeaveType)
	if !leaveType.Valid() {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Invalid leave type")
	}
	start, err := util.ParseDate(in.StartDate, s.rt.Location)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	end, err := util.ParseDate(in.EndDate, s.rt.Location)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	if start.After(end) {
		return nil, apperror.Validation(apperror.CodeInvalidDateRange, "Start date cannot be after end date")
	}

	version, err := s.leaveVersion(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if overlap, err := s.overlaps(ctx, employeeID, start, end, nil); err != nil {
		return nil, err
	} else if overlap {
		s.rt.Metrics.LeaveRequests.WithLabelValues("overlap").Inc()
		return nil, errLeaveOverlap()
	}

	now := s.rt.now()
	leave := &models.LeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		Reason:     reason,
		Status:     models.LeavePending,
		AppliedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = s.leaves.Create(ctx, leave); err != nil {
		return nil, apperror.Internal("failed to apply leave", err)
	}

	if err = s.commit(ctx, employeeID, leave, version); err != nil {
		return nil, err
	}

	s.rt.Metrics.LeaveRequests.WithLabelValues("applied").Inc()
	s.rt.Log.InfoContext(ctx, "leave applied",
		"leave_id", leave.ID.Hex(), "employee_id", employeeID.Hex(), "type", leaveType,
		"start", in.StartDate, "end", in.EndDate)
	return leave, nil
}

// commit bumps the employee's leave version. When another request bumped it
// first, the overlap check is repeated against the fresh state; on overlap
// our insert is withdrawn.
func (s *LeaveService) commit(ctx context.Context, employeeID primitive.ObjectID, leave *models.LeaveRequest, version int64) error {
	for attempt := 0; attempt < leaveCommitAttempts; attempt++ {
		ok, err := s.employees.BumpLeaveVersion(ctx, employeeID, version)
		if err != nil {
			s.withdraw(ctx, leave)
			return apperror.Internal("failed to apply leave", err)
		}
		if ok {
			return nil
		}

		if version, err = s.leaveVersion(ctx, employeeID); err != nil {
			s.withdraw(ctx, leave)
			return err
		}
		overlap, err := s.overlaps(ctx, employeeID, leave.StartDate, leave.EndDate, &leave.ID)
		if err != nil {
			s.withdraw(ctx, leave)
			return err
		}
		if overlap {
			s.withdraw(ctx, leave)
			s.rt.Metrics.LeaveRequests.WithLabelValues("overlap").Inc()
			return errLeaveOverlap()
		}
	}
	s.withdraw(ctx, leave)
	return errLeaveOverlap()
}

func (s *LeaveService) withdraw(ctx context.Context, leave *models.LeaveRequest) {
	if err := s.leaves.Delete(ctx, leave.ID); err != nil {
		s.rt.Log.ErrorContext(ctx, "failed to withdraw leave request", "leave_id", leave.ID.Hex(), "error", err)
	}
}

func (s *LeaveService) leaveVersion(ctx context.Context, employeeID primitive.ObjectID) (int64, error) {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return 0, apperror.Internal("failed to fetch employee", err)
	}
	if emp == nil {
		return 0, apperror.NotFound("Employee not found")
	}
	return emp.LeaveVersion, nil
}

func (s *LeaveService) overlaps(ctx context.Context, employeeID primitive.ObjectID, start, end time.Time, exclude *primitive.ObjectID) (bool, error) {
	found, err := s.leaves.FindOverlapping(ctx, employeeID, start, end, exclude)
	if err != nil {
		return false, apperror.Internal("failed to check overlapping leaves", err)
	}
	return len(found) > 0, nil
}

// Review approves or rejects a Pending request exactly once.
func (s *LeaveService) Review(ctx context.Context, id primitive.ObjectID, status, remarks, adminEmail string) (*models.LeaveRequest, error) {
	st := models.LeaveStatus(status)
	if st != models.LeaveApproved && st != models.LeaveRejected {
		return nil, apperror.Validation(apperror.CodeInvalidStatus, "Status must be Approved or Rejected")
	}

	leave, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to fetch leave request", err)
	}
	if leave == nil {
		return nil, apperror.NotFound("Leave request not found")
	}
	if leave.Status != models.LeavePending {
		return nil, errAlreadyReviewed()
	}

	now := s.rt.now()
	ok, err := s.leaves.Review(ctx, id, st, strings.TrimSpace(remarks), adminEmail, now)
	if err != nil {
		return nil, apperror.Internal("failed to review leave request", err)
	}
	if !ok {
		return nil, errAlreadyReviewed()
	}

	leave.Status = st
	leave.AdminRemarks = strings.TrimSpace(remarks)
	leave.ReviewedBy = adminEmail
	leave.ReviewedAt = &now
	leave.UpdatedAt = now

	s.rt.Metrics.LeaveRequests.WithLabelValues(strings.ToLower(string(st))).Inc()
	s.rt.Log.InfoContext(ctx, "leave reviewed", "leave_id", id.Hex(), "status", st, "admin", adminEmail)
	return leave, nil
}

func errAlreadyReviewed() *apperror.Error {
	return apperror.Conflict(apperror.CodeAlreadyReviewed, "Leave request has already been reviewed")
}

// Cancel deletes the employee's own Pending request. Requests owned by
// someone else are reported as not found.
func (s *LeaveService) Cancel(ctx context.Context, id, employeeID primitive.ObjectID) error {
	leave, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		return apperror.Internal("failed to fetch leave request", err)
	}
	if leave == nil || leave.EmployeeID != employeeID {
		return apperror.NotFound("Leave not found")
	}
	if leave.Status != models.LeavePending {
		return apperror.Validation(apperror.CodeNotPending, "Only pending leaves can be cancelled")
	}

	ok, err := s.leaves.DeleteIfPending(ctx, id, employeeID)
	if err != nil {
		return apperror.Internal("failed to cancel leave", err)
	}
	if !ok {
		return apperror.Validation(apperror.CodeNotPending, "Only pending leaves can be cancelled")
	}

	s.rt.Metrics.LeaveRequests.WithLabelValues("cancelled").Inc()
	s.rt.Log.InfoContext(ctx, "leave cancelled", "leave_id", id.Hex(), "employee_id", employeeID.Hex())
	return nil
}

// Mine lists the employee's requests, newest first.
func (s *LeaveService) Mine(ctx context.Context, employeeID primitive.ObjectID) ([]models.LeaveRequest, error) {
	leaves, err := s.leaves.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Internal("failed to fetch leaves", err)
	}
	return leaves, nil
}

// List is the admin view, optionally filtered by status.
func (s *LeaveService) List(ctx context.Context, status string) ([]models.LeaveWithEmployee, error) {
	st := models.LeaveStatus(status)
	switch st {
	case "", models.LeavePending, models.LeaveApproved, models.LeaveRejected:
	default:
		return nil, apperror.Validation(apperror.CodeInvalidStatus, "Invalid leave status filter")
	}
	leaves, err := s.leaves.FindAll(ctx, st)
	if err != nil {
		return nil, apperror.Internal("failed to fetch leaves", err)
	}
	return leaves, nil
}

package services

import (
	"context"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/repository"
)

type DashboardService struct {
	employees   repository.EmployeeRepository
	attendances repository.AttendanceRepository
	leaves      repository.LeaveRepository
	offices     *OfficeService
	rt          Runtime
}

func NewDashboardService(
	employees repository.EmployeeRepository,
	attendances repository.AttendanceRepository,
	leaves repository.LeaveRepository,
	offices *OfficeService,
	rt Runtime,
) *DashboardService {
	return &DashboardService{employees: employees, attendances: attendances, leaves: leaves, offices: offices, rt: rt.withDefaults()}
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	var err error
	today := s.rt.today()

	if stats.TotalEmployees, err = s.employees.Count(ctx, false); err != nil {
		return nil, apperror.Internal("failed to count employees", err)
	}
	if stats.ActiveEmployees, err = s.employees.Count(ctx, true); err != nil {
		return nil, apperror.Internal("failed to count employees", err)
	}
	if stats.PresentToday, err = s.attendances.CountByDate(ctx, today, models.StatusPresent, models.StatusHalfDay); err != nil {
		return nil, apperror.Internal("failed to count attendance", err)
	}
	onLeave, err := s.leaves.FindApprovedCovering(ctx, today)
	if err != nil {
		return nil, apperror.Internal("failed to fetch approved leaves", err)
	}
	stats.OnLeaveToday = int64(len(onLeave))
	if stats.PendingLeaveRequests, err = s.leaves.CountByStatus(ctx, models.LeavePending); err != nil {
		return nil, apperror.Internal("failed to count leave requests", err)
	}
	if stats.Departments, err = s.employees.CountByDepartment(ctx); err != nil {
		return nil, apperror.Internal("failed to count departments", err)
	}
	office, err := s.offices.Active(ctx)
	if err != nil {
		return nil, err
	}
	stats.OfficeConfigured = office != nil
	return &stats, nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/report"
	util "geo-attendance/pkg/utils"
	"geo-attendance/repository"
)

const maxExportDays = 366

const (
	remarkClosedAbsent = "Marked absent by day close-out"
	remarkClosedLeave  = "Approved leave"
)

// CloseOut writes a record for every active employee who has none on a past
// workday: Leave when an approved leave covers the day, Absent otherwise.
// Open check-ins are left untouched.
func (s *AttendanceService) CloseOut(ctx context.Context, dateStr, adminEmail string) (*models.CloseOutResult, error) {
	day, err := util.ParseDate(dateStr, s.rt.Location)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	if !day.Before(s.rt.today()) {
		return nil, apperror.Validation(apperror.CodeInvalidDateRange, "Close-out is only allowed for past dates")
	}

	result := &models.CloseOutResult{Date: day}

	cal, err := s.offices.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	if !cal.IsWorkday(day) {
		return result, nil
	}
	result.Workday = true

	employees, err := s.employees.FindAll(ctx, true)
	if err != nil {
		return nil, apperror.Internal("failed to fetch employees", err)
	}
	records, err := s.attendances.FindByDate(ctx, day)
	if err != nil {
		return nil, apperror.Internal("failed to fetch attendance", err)
	}
	hasRecord := make(map[primitive.ObjectID]bool, len(records))
	for _, rec := range records {
		hasRecord[rec.EmployeeID] = true
	}
	leaves, err := s.leaves.FindApprovedCovering(ctx, day)
	if err != nil {
		return nil, apperror.Internal("failed to fetch approved leaves", err)
	}
	onLeave := make(map[primitive.ObjectID]bool, len(leaves))
	for _, l := range leaves {
		onLeave[l.EmployeeID] = true
	}

	endOfDay := day.AddDate(0, 0, 1)
	now := s.rt.now()
	for _, emp := range employees {
		if hasRecord[emp.ID] || !emp.CreatedAt.Before(endOfDay) {
			result.Skipped++
			continue
		}

		rec := &models.Attendance{
			EmployeeID: emp.ID,
			Date:       day,
			Status:     models.StatusAbsent,
			Remarks:    remarkClosedAbsent,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if onLeave[emp.ID] {
			rec.Status = models.StatusLeave
			rec.Remarks = remarkClosedLeave
		}

		if err = s.attendances.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				result.Skipped++
				continue
			}
			return nil, apperror.Internal("failed to write close-out record", err)
		}
		s.rt.Metrics.ClosedOutRecords.WithLabelValues(string(rec.Status)).Inc()
		if rec.Status == models.StatusLeave {
			result.MarkedLeave++
		} else {
			result.MarkedAbsent++
		}
	}

	s.rt.Log.InfoContext(ctx, "day closed out",
		"date", util.FormatDate(day), "absent", result.MarkedAbsent, "leave", result.MarkedLeave,
		"skipped", result.Skipped, "admin", adminEmail)
	return result, nil
}

// Export renders the records between from and to (inclusive, YYYY-MM-DD) as
// an XLSX workbook.
func (s *AttendanceService) Export(ctx context.Context, fromStr, toStr string) (*bytes.Buffer, error) {
	from, err := util.ParseDate(fromStr, s.rt.Location)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	to, err := util.ParseDate(toStr, s.rt.Location)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	if from.After(to) {
		return nil, apperror.Validation(apperror.CodeInvalidDateRange, "Start date cannot be after end date")
	}
	if to.Sub(from) > maxExportDays*24*time.Hour {
		return nil, apperror.Validation(apperror.CodeInvalidDateRange, "Export range cannot exceed one year")
	}

	records, err := s.attendances.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, apperror.Internal("failed to fetch attendance", err)
	}

	rows := make([]report.ExcelRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, report.ExcelRow{
			Date:           rec.Date,
			FullName:       rec.FullName,
			Email:          rec.Email,
			Department:     rec.Department,
			Designation:    rec.Designation,
			Status:         string(rec.Status),
			CheckInTime:    rec.CheckInTime,
			CheckOutTime:   rec.CheckOutTime,
			WorkingMinutes: rec.WorkingMinutes,
			Remarks:        rec.Remarks,
		})
	}

	start := time.Now()
	buf, err := report.GenerateAttendanceReport(rows, s.rt.Location)
	if err != nil {
		if errors.Is(err, report.ErrNoRows) {
			return nil, apperror.NotFound("No attendance records in the selected range")
		}
		return nil, apperror.Internal("failed to generate attendance report", err)
	}
	s.rt.Metrics.ReportGeneration.Observe(time.Since(start).Seconds())
	return buf, nil
}

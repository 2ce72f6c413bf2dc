// Package memory implements the repository interfaces in process memory.
// It backs STORAGE_DRIVER=memory and the service and router tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/repository"
)

type dayKey struct {
	employee primitive.ObjectID
	date     int64
}

// Store holds every collection behind one lock so conditional updates are atomic.
type Store struct {
	mu            sync.RWMutex
	employees     map[primitive.ObjectID]models.Employee
	admins        map[primitive.ObjectID]models.Admin
	attendances   map[primitive.ObjectID]models.Attendance
	attendanceDay map[dayKey]primitive.ObjectID
	leaves        map[primitive.ObjectID]models.LeaveRequest
	offices       map[primitive.ObjectID]models.OfficeLocation
	notifications map[primitive.ObjectID]models.Notification
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[primitive.ObjectID]models.Employee),
		admins:        make(map[primitive.ObjectID]models.Admin),
		attendances:   make(map[primitive.ObjectID]models.Attendance),
		attendanceDay: make(map[dayKey]primitive.ObjectID),
		leaves:        make(map[primitive.ObjectID]models.LeaveRequest),
		offices:       make(map[primitive.ObjectID]models.OfficeLocation),
		notifications: make(map[primitive.ObjectID]models.Notification),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Employees:     s.Employees(),
		Admins:        s.Admins(),
		Attendances:   s.Attendances(),
		Leaves:        s.Leaves(),
		Offices:       s.Offices(),
		Notifications: s.Notifications(),
		Pinger:        s,
	}
}

func (s *Store) Employees() repository.EmployeeRepository         { return employeeRepo{s} }
func (s *Store) Admins() repository.AdminRepository               { return adminRepo{s} }
func (s *Store) Attendances() repository.AttendanceRepository     { return attendanceRepo{s} }
func (s *Store) Leaves() repository.LeaveRepository               { return leaveRepo{s} }
func (s *Store) Offices() repository.OfficeRepository             { return officeRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func duplicate(what string) error {
	return fmt.Errorf("failed to create %s: %w", what, repository.ErrDuplicateKey)
}

// employees

type employeeRepo struct{ s *Store }

func (r employeeRepo) Create(_ context.Context, e *models.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if existing.Email == e.Email {
			return duplicate("employee")
		}
	}
	ensureID(&e.ID)
	r.s.employees[e.ID] = *e
	return nil
}

func (r employeeRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r employeeRepo) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.employees {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, nil
}

func (r employeeRepo) FindAll(_ context.Context, activeOnly bool) ([]models.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Employee{}
	for _, e := range r.s.employees {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r employeeRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	all, _ := r.FindAll(ctx, activeOnly)
	return int64(len(all)), nil
}

func (r employeeRepo) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	active, _ := r.FindAll(ctx, true)
	byName := map[string]int64{}
	for _, e := range active {
		byName[e.Department]++
	}
	out := make([]models.DepartmentCount, 0, len(byName))
	for name, n := range byName {
		out = append(out, models.DepartmentCount{Department: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}

func (r employeeRepo) update(id primitive.ObjectID, fn func(*models.Employee)) *models.Employee {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil
	}
	fn(&e)
	e.UpdatedAt = time.Now()
	r.s.employees[id] = e
	return &e
}

func (r employeeRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, isActive bool) (*models.Employee, error) {
	return r.update(id, func(e *models.Employee) { e.IsActive = isActive }), nil
}

func (r employeeRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, address *models.Address, contact *models.EmergencyContact) (*models.Employee, error) {
	return r.update(id, func(e *models.Employee) {
		if address != nil {
			a := *address
			e.Address = &a
		}
		if contact != nil {
			c := *contact
			e.EmergencyContact = &c
		}
	}), nil
}

func (r employeeRepo) BumpLeaveVersion(_ context.Context, id primitive.ObjectID, expected int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok || e.LeaveVersion != expected {
		return false, nil
	}
	e.LeaveVersion++
	r.s.employees[id] = e
	return true, nil
}

// admins

type adminRepo struct{ s *Store }

func (r adminRepo) Create(_ context.Context, a *models.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if existing.Email == a.Email {
			return duplicate("admin")
		}
	}
	ensureID(&a.ID)
	r.s.admins[a.ID] = *a
	return nil
}

func (r adminRepo) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, nil
}

func (r adminRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// attendances

type attendanceRepo struct{ s *Store }

func keyOf(a *models.Attendance) dayKey {
	return dayKey{employee: a.EmployeeID, date: a.Date.UnixMilli()}
}

func (r attendanceRepo) Create(_ context.Context, a *models.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.attendanceDay[keyOf(a)]; taken {
		return duplicate("attendance")
	}
	ensureID(&a.ID)
	r.s.attendances[a.ID] = *a
	r.s.attendanceDay[keyOf(a)] = a.ID
	return nil
}

func (r attendanceRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.attendances[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r attendanceRepo) FindByEmployeeAndDate(_ context.Context, employeeID primitive.ObjectID, date time.Time) (*models.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.attendanceDay[dayKey{employee: employeeID, date: date.UnixMilli()}]
	if !ok {
		return nil, nil
	}
	a := r.s.attendances[id]
	return &a, nil
}

func (r attendanceRepo) filter(keep func(*models.Attendance) bool) []models.Attendance {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Attendance{}
	for _, a := range r.s.attendances {
		if keep(&a) {
			out = append(out, a)
		}
	}
	return out
}

func checkIn(a *models.Attendance) time.Time {
	if a.CheckInTime == nil {
		return time.Time{}
	}
	return *a.CheckInTime
}

func sortHistory(records []models.Attendance) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return checkIn(&records[i]).After(checkIn(&records[j]))
	})
}

func (r attendanceRepo) FindByEmployee(_ context.Context, employeeID primitive.ObjectID) ([]models.Attendance, error) {
	out := r.filter(func(a *models.Attendance) bool { return a.EmployeeID == employeeID })
	sortHistory(out)
	return out, nil
}

func (r attendanceRepo) FindByDate(_ context.Context, date time.Time) ([]models.Attendance, error) {
	out := r.filter(func(a *models.Attendance) bool { return a.Date.Equal(date) })
	sortHistory(out)
	return out, nil
}

func (r attendanceRepo) withEmployee(records []models.Attendance) []models.AttendanceWithEmployee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.AttendanceWithEmployee, 0, len(records))
	for _, a := range records {
		row := models.AttendanceWithEmployee{Attendance: a}
		if e, ok := r.s.employees[a.EmployeeID]; ok {
			row.FullName, row.Email = e.FullName, e.Email
			row.Department, row.Designation = e.Department, e.Designation
		}
		out = append(out, row)
	}
	return out
}

func (r attendanceRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]models.AttendanceWithEmployee, error) {
	out := r.filter(func(a *models.Attendance) bool { return !a.Date.Before(from) && !a.Date.After(to) })
	sortHistory(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return r.withEmployee(out), nil
}

func (r attendanceRepo) FindPaginated(_ context.Context, page, limit int64) ([]models.AttendanceWithEmployee, int64, error) {
	all := r.filter(func(*models.Attendance) bool { return true })
	sortHistory(all)
	total := int64(len(all))
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := start + limit
	if end > total {
		end = total
	}
	return r.withEmployee(all[start:end]), total, nil
}

func (r attendanceRepo) SummaryByEmployee(ctx context.Context, employeeID primitive.ObjectID) (models.StatusCounts, error) {
	var c models.StatusCounts
	records, err := r.FindByEmployee(ctx, employeeID)
	if err != nil {
		return c, err
	}
	for _, a := range records {
		c.Total++
		switch a.Status {
		case models.StatusPresent:
			c.Present++
		case models.StatusLeave:
			c.Leave++
		case models.StatusHalfDay:
			c.HalfDay++
		case models.StatusAbsent:
			c.Absent++
		}
	}
	return c, nil
}

func (r attendanceRepo) CountByDate(_ context.Context, date time.Time, statuses ...models.AttendanceStatus) (int64, error) {
	out := r.filter(func(a *models.Attendance) bool {
		if !a.Date.Equal(date) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if a.Status == s {
				return true
			}
		}
		return false
	})
	return int64(len(out)), nil
}

func (r attendanceRepo) SetCheckOut(_ context.Context, id primitive.ObjectID, checkOut time.Time, workingMinutes int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendances[id]
	if !ok || a.CheckOutTime != nil {
		return false, nil
	}
	a.CheckOutTime = &checkOut
	a.WorkingMinutes = workingMinutes
	a.UpdatedAt = checkOut
	r.s.attendances[id] = a
	return true, nil
}

func (r attendanceRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.AttendanceStatus, remarks *string) (*models.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendances[id]
	if !ok {
		return nil, nil
	}
	a.Status = status
	if remarks != nil {
		a.Remarks = *remarks
	}
	a.UpdatedAt = time.Now()
	r.s.attendances[id] = a
	return &a, nil
}

// leaves

type leaveRepo struct{ s *Store }

func (r leaveRepo) Create(_ context.Context, l *models.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&l.ID)
	r.s.leaves[l.ID] = *l
	return nil
}

func (r leaveRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r leaveRepo) filter(keep func(*models.LeaveRequest) bool) []models.LeaveRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.LeaveRequest{}
	for _, l := range r.s.leaves {
		if keep(&l) {
			out = append(out, l)
		}
	}
	return out
}

func sortNewestFirst(leaves []models.LeaveRequest) {
	sort.Slice(leaves, func(i, j int) bool {
		if !leaves[i].AppliedAt.Equal(leaves[j].AppliedAt) {
			return leaves[i].AppliedAt.After(leaves[j].AppliedAt)
		}
		return leaves[i].ID.Hex() > leaves[j].ID.Hex()
	})
}

func (r leaveRepo) FindByEmployee(_ context.Context, employeeID primitive.ObjectID) ([]models.LeaveRequest, error) {
	out := r.filter(func(l *models.LeaveRequest) bool { return l.EmployeeID == employeeID })
	sortNewestFirst(out)
	return out, nil
}

func (r leaveRepo) FindAll(_ context.Context, status models.LeaveStatus) ([]models.LeaveWithEmployee, error) {
	leaves := r.filter(func(l *models.LeaveRequest) bool { return status == "" || l.Status == status })
	sortNewestFirst(leaves)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.LeaveWithEmployee, 0, len(leaves))
	for _, l := range leaves {
		row := models.LeaveWithEmployee{LeaveRequest: l}
		if e, ok := r.s.employees[l.EmployeeID]; ok {
			row.FullName, row.Email, row.Department = e.FullName, e.Email, e.Department
		}
		out = append(out, row)
	}
	return out, nil
}

func blocking(l *models.LeaveRequest) bool {
	return l.Status == models.LeavePending || l.Status == models.LeaveApproved
}

func (r leaveRepo) FindOverlapping(_ context.Context, employeeID primitive.ObjectID, start, end time.Time, exclude *primitive.ObjectID) ([]models.LeaveRequest, error) {
	out := r.filter(func(l *models.LeaveRequest) bool {
		if exclude != nil && l.ID == *exclude {
			return false
		}
		return l.EmployeeID == employeeID && blocking(l) && l.Overlaps(start, end)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r leaveRepo) FindApprovedCovering(_ context.Context, date time.Time) ([]models.LeaveRequest, error) {
	return r.filter(func(l *models.LeaveRequest) bool {
		return l.Status == models.LeaveApproved && l.Covers(date)
	}), nil
}

func (r leaveRepo) CountByStatus(_ context.Context, status models.LeaveStatus) (int64, error) {
	return int64(len(r.filter(func(l *models.LeaveRequest) bool { return l.Status == status }))), nil
}

func (r leaveRepo) Review(_ context.Context, id primitive.ObjectID, status models.LeaveStatus, remarks, reviewer string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok || l.Status != models.LeavePending {
		return false, nil
	}
	l.Status = status
	l.AdminRemarks = remarks
	l.ReviewedBy = reviewer
	l.ReviewedAt = &at
	l.UpdatedAt = at
	r.s.leaves[id] = l
	return true, nil
}

func (r leaveRepo) DeleteIfPending(_ context.Context, id, employeeID primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok || l.EmployeeID != employeeID || l.Status != models.LeavePending {
		return false, nil
	}
	delete(r.s.leaves, id)
	return true, nil
}

func (r leaveRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.leaves, id)
	return nil
}

// offices

type officeRepo struct{ s *Store }

func (r officeRepo) Insert(_ context.Context, o *models.OfficeLocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&o.ID)
	r.s.offices[o.ID] = *o
	return nil
}

func (r officeRepo) latest(activeOnly bool) *models.OfficeLocation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var best *models.OfficeLocation
	for _, o := range r.s.offices {
		if activeOnly && !o.IsActive {
			continue
		}
		if best == nil || o.Version > best.Version ||
			(o.Version == best.Version && o.CreatedAt.After(best.CreatedAt)) {
			o := o
			best = &o
		}
	}
	return best
}

func (r officeRepo) FindActive(context.Context) (*models.OfficeLocation, error) {
	return r.latest(true), nil
}

func (r officeRepo) LatestVersion(context.Context) (int64, error) {
	if o := r.latest(false); o != nil {
		return o.Version, nil
	}
	return 0, nil
}

func (r officeRepo) DeactivateExcept(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for oid, o := range r.s.offices {
		if oid != id && o.IsActive {
			o.IsActive = false
			o.UpdatedAt = now
			r.s.offices[oid] = o
		}
	}
	return nil
}

// notifications

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&n.ID)
	if n.ReadBy == nil {
		n.ReadBy = []primitive.ObjectID{}
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) filter(keep func(*models.Notification) bool) []models.Notification {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range r.s.notifications {
		if keep(&n) {
			n.ReadBy = append([]primitive.ObjectID(nil), n.ReadBy...)
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r notificationRepo) FindAll(context.Context) ([]models.Notification, error) {
	return r.filter(func(*models.Notification) bool { return true }), nil
}

func visibleTo(n *models.Notification, employeeID primitive.ObjectID) bool {
	if n.Target == models.NotifyAll {
		return true
	}
	return n.EmployeeID != nil && *n.EmployeeID == employeeID
}

func (r notificationRepo) FindForEmployee(_ context.Context, employeeID primitive.ObjectID) ([]models.Notification, error) {
	return r.filter(func(n *models.Notification) bool { return visibleTo(n, employeeID) }), nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, employeeID primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || !visibleTo(&n, employeeID) {
		return false, nil
	}
	for _, reader := range n.ReadBy {
		if reader == employeeID {
			return true, nil
		}
	}
	n.ReadBy = append(append([]primitive.ObjectID(nil), n.ReadBy...), employeeID)
	r.s.notifications[id] = n
	return true, nil
}

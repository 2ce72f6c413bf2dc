package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/repository"
)

// NotificationService stores notices for employees. Delivery is left to the
// clients, which poll their list.
type NotificationService struct {
	notifications repository.NotificationRepository
	employees     repository.EmployeeRepository
	rt            Runtime
}

func NewNotificationService(notifications repository.NotificationRepository, employees repository.EmployeeRepository, rt Runtime) *NotificationService {
	return &NotificationService{notifications: notifications, employees: employees, rt: rt.withDefaults()}
}

func (s *NotificationService) Create(ctx context.Context, in models.NotificationPayload) (*models.Notification, error) {
	title, message := strings.TrimSpace(in.Title), strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Title and message are required")
	}

	n := &models.Notification{
		Title:     title,
		Message:   message,
		Target:    models.NotifyAll,
		CreatedAt: s.rt.now(),
	}
	if in.Target == models.NotifyEmployee {
		id, err := primitive.ObjectIDFromHex(in.EmployeeID)
		if err != nil {
			return nil, apperror.Validation(apperror.CodeInvalidInput, "Invalid employee id")
		}
		emp, err := s.employees.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.Internal("failed to fetch employee", err)
		}
		if emp == nil {
			return nil, apperror.NotFound("Employee not found")
		}
		n.Target = models.NotifyEmployee
		n.EmployeeID = &id
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, apperror.Internal("failed to create notification", err)
	}
	return n, nil
}

func (s *NotificationService) All(ctx context.Context) ([]models.Notification, error) {
	list, err := s.notifications.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to fetch notifications", err)
	}
	return list, nil
}

// ForEmployee lists what the employee can see with their read flag set.
func (s *NotificationService) ForEmployee(ctx context.Context, employeeID primitive.ObjectID) ([]models.Notification, error) {
	list, err := s.notifications.FindForEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Internal("failed to fetch notifications", err)
	}
	for i := range list {
		list[i].ReadFor(employeeID)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, employeeID primitive.ObjectID) error {
	ok, err := s.notifications.MarkRead(ctx, id, employeeID)
	if err != nil {
		return apperror.Internal("failed to update notification", err)
	}
	if !ok {
		return apperror.NotFound("Notification not found")
	}
	return nil
}

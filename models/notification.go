package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotifyAll      = "all"
	NotifyEmployee = "employee"
)

type Notification struct {
	ID         primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title      string               `json:"title" bson:"title"`
	Message    string               `json:"message" bson:"message"`
	Target     string               `json:"target" bson:"target"`
	EmployeeID *primitive.ObjectID  `json:"employee,omitempty" bson:"employee_id,omitempty"`
	ReadBy     []primitive.ObjectID `json:"-" bson:"read_by"`
	IsRead     bool                 `json:"isRead" bson:"-"`
	CreatedAt  time.Time            `json:"createdAt" bson:"created_at"`
}

// ReadFor fills IsRead from the viewer's point of view.
func (n *Notification) ReadFor(employeeID primitive.ObjectID) {
	n.IsRead = false
	for _, id := range n.ReadBy {
		if id == employeeID {
			n.IsRead = true
			return
		}
	}
}

type NotificationPayload struct {
	Title      string `json:"title" validate:"required,max=120"`
	Message    string `json:"message" validate:"required,max=2000"`
	Target     string `json:"target" validate:"omitempty,oneof=all employee"`
	EmployeeID string `json:"employee" validate:"required_if=Target employee"`
}

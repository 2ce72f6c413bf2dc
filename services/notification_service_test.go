package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/services"
)

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	svc := services.NewNotificationService(f.store.Notifications(), f.store.Employees(), f.rt)
	ctx := context.Background()
	asha := f.addEmployee(t, "asha")
	ben := f.addEmployee(t, "ben")

	broadcast, err := svc.Create(ctx, models.NotificationPayload{Title: "Holiday", Message: "Office closed Friday"})
	require.NoError(t, err)
	assert.Equal(t, models.NotifyAll, broadcast.Target)

	direct, err := svc.Create(ctx, models.NotificationPayload{
		Title: "Badge", Message: "Collect your badge", Target: models.NotifyEmployee, EmployeeID: asha.ID.Hex(),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.NotificationPayload{
		Title: "x", Message: "y", Target: models.NotifyEmployee, EmployeeID: primitive.NewObjectID().Hex(),
	})
	requireAppError(t, err, apperror.KindNotFound, apperror.CodeNotFound, http.StatusNotFound)

	forAsha, err := svc.ForEmployee(ctx, asha.ID)
	require.NoError(t, err)
	assert.Len(t, forAsha, 2)

	forBen, err := svc.ForEmployee(ctx, ben.ID)
	require.NoError(t, err)
	require.Len(t, forBen, 1)
	assert.Equal(t, broadcast.ID, forBen[0].ID)

	require.NoError(t, svc.MarkRead(ctx, direct.ID, asha.ID))
	err = svc.MarkRead(ctx, direct.ID, ben.ID)
	requireAppError(t, err, apperror.KindNotFound, apperror.CodeNotFound, http.StatusNotFound)

	forAsha, err = svc.ForEmployee(ctx, asha.ID)
	require.NoError(t, err)
	for _, n := range forAsha {
		assert.Equal(t, n.ID == direct.ID, n.IsRead, n.Title)
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

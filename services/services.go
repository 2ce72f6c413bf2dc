// Package services holds the attendance, leave and office rules. Handlers
// translate HTTP to these calls; repositories do the storage.
package services

import (
	"log/slog"
	"time"

	"geo-attendance/pkg/metrics"
	util "geo-attendance/pkg/utils"
)

// Runtime carries the collaborators every service shares.
type Runtime struct {
	Log      *slog.Logger
	Metrics  *metrics.Metrics
	Location *time.Location
	Now      func() time.Time
}

func (rt Runtime) withDefaults() Runtime {
	if rt.Log == nil {
		rt.Log = slog.Default()
	}
	if rt.Metrics == nil {
		rt.Metrics = metrics.NewNoop()
	}
	if rt.Location == nil {
		rt.Location = time.Local
	}
	if rt.Now == nil {
		rt.Now = time.Now
	}
	return rt
}

func (rt Runtime) now() time.Time {
	return rt.Now().In(rt.Location)
}

func (rt Runtime) today() time.Time {
	return util.StartOfDay(rt.Now(), rt.Location)
}

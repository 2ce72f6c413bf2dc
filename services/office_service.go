package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/geo"
	util "geo-attendance/pkg/utils"
	"geo-attendance/repository"
)

type OfficeService struct {
	offices repository.OfficeRepository
	rt      Runtime

	// mu keeps configuration single-writer within this process.
	mu sync.Mutex
}

func NewOfficeService(offices repository.OfficeRepository, rt Runtime) *OfficeService {
	return &OfficeService{offices: offices, rt: rt.withDefaults()}
}

// ConfigureInput describes a new office geofence.
type ConfigureInput struct {
	Name         string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters *float64
	WorkdayRule  string
	AdminEmail   string
}

// Active returns the active office, or nil when none is configured.
func (s *OfficeService) Active(ctx context.Context) (*models.OfficeLocation, error) {
	office, err := s.offices.FindActive(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to load office location", err)
	}
	return office, nil
}

// Configure stores a new active office and retires the previous ones.
func (s *OfficeService) Configure(ctx context.Context, in ConfigureInput) (*models.OfficeLocation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Latitude == nil || in.Longitude == nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Name, latitude and longitude are required")
	}
	point := geo.Point{Lat: *in.Latitude, Lon: *in.Longitude}
	if err := geo.Validate(point); err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidLocation, err.Error())
	}

	radius := models.DefaultRadiusMeters
	if in.RadiusMeters != nil {
		radius = *in.RadiusMeters
	}
	if radius <= 0 {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Allowed radius must be greater than zero")
	}

	rule := strings.TrimSpace(in.WorkdayRule)
	if rule == "" {
		rule = models.DefaultWorkdayRule
	}
	if err := util.ValidateWorkdayRule(rule); err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.offices.LatestVersion(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to read office version", err)
	}

	now := s.rt.now()
	office := &models.OfficeLocation{
		Name:                name,
		Coordinates:         models.NewGeoPoint(point.Lat, point.Lon),
		AllowedRadiusMeters: radius,
		IsActive:            true,
		Version:             latest + 1,
		WorkdayRule:         rule,
		CreatedBy:           in.AdminEmail,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err = s.offices.Insert(ctx, office); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.Conflict(apperror.CodeDuplicate, "Office location was changed by another request, try again")
		}
		return nil, apperror.Internal("failed to save office location", err)
	}
	// The new entry is already active; lookups prefer the highest version
	// until the older ones are retired.
	if err = s.offices.DeactivateExcept(ctx, office.ID); err != nil {
		return nil, apperror.Internal("failed to retire previous office locations", err)
	}

	s.rt.Metrics.OfficeConfigureOp.Inc()
	s.rt.Log.InfoContext(ctx, "office location configured",
		"office_id", office.ID.Hex(), "version", office.Version, "radius_m", radius, "admin", in.AdminEmail)
	return office, nil
}

// Calendar returns the workday calendar of the active office, falling back
// to Monday to Friday when no office is configured.
func (s *OfficeService) Calendar(ctx context.Context) (*util.WorkdayCalendar, error) {
	office, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	rule := models.DefaultWorkdayRule
	if office != nil && office.WorkdayRule != "" {
		rule = office.WorkdayRule
	}
	cal, err := util.NewWorkdayCalendar(rule, s.rt.Location)
	if err != nil {
		return nil, apperror.Internal("stored workday rule is invalid", err)
	}
	return cal, nil
}

package occurrence

import (
	"context"
	"slices"
	"strings"

	"attendly/apperror"
	"attendly/models"
	"attendly/services/gate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultOccurrenceService) CreateLocation(ctx context.Context, callerID string, req models.CreateLocationRequest) (*models.Location, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("location name is required")
	}
	if req.Capacity <= 0 {
		return nil, apperror.Validation("location capacity must be positive")
	}
	loc := &models.Location{
		ID:          uuid.New().String(),
		ProviderID:  callerID,
		Name:        strings.TrimSpace(req.Name),
		Capacity:    req.Capacity,
		AllowedTags: slices.Clone(req.AllowedTags),
		Geo:         req.Geo,
		CreatedAt:   s.now(),
	}
	if err := s.Locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	s.logger().Info("Location created", zap.String("locationID", loc.ID), zap.String("providerID", callerID))
	return loc, nil
}

func (s *DefaultOccurrenceService) CreateOffering(ctx context.Context, callerID string, req models.CreateOfferingRequest) (*models.Offering, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.Validation("offering title is required")
	}
	off := &models.Offering{
		ID:          uuid.New().String(),
		ProviderID:  callerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedAt:   s.now(),
	}
	if err := s.Offerings.Create(ctx, off); err != nil {
		return nil, err
	}
	s.logger().Info("Offering created", zap.String("offeringID", off.ID), zap.String("providerID", callerID))
	return off, nil
}

// CreateOccurrence creates one occurrence by hand. With a location, missing
// capacity and tags fall back to the location's.
func (s *DefaultOccurrenceService) CreateOccurrence(ctx context.Context, callerID string, req models.CreateOccurrenceRequest) (*models.Occurrence, error) {
	if _, err := s.Owners.Offering(ctx, callerID, req.OfferingID); err != nil {
		return nil, err
	}
	occ := &models.Occurrence{
		ID:          uuid.New().String(),
		OfferingID:  req.OfferingID,
		LocationID:  req.LocationID,
		Start:       req.Start.UTC(),
		End:         req.End.UTC(),
		Capacity:    req.Capacity,
		AllowedTags: slices.Clone(req.AllowedTags),
		GeoOverride: req.GeoOverride,
		CreatedAt:   s.now(),
	}
	if req.LocationID != "" {
		loc, err := s.Owners.Location(ctx, callerID, req.LocationID)
		if err != nil {
			return nil, err
		}
		if occ.Capacity == 0 {
			occ.Capacity = loc.Capacity
		}
		if occ.AllowedTags == nil {
			occ.AllowedTags = slices.Clone(loc.AllowedTags)
		}
	}
	if err := validateWindow(occ); err != nil {
		return nil, err
	}
	if err := s.Insert(ctx, occ); err != nil {
		return nil, err
	}
	return occ, nil
}

// GetOccurrence returns the occurrence with its live seat usage.
func (s *DefaultOccurrenceService) GetOccurrence(ctx context.Context, occurrenceID string) (*models.OccurrenceView, error) {
	occ, err := s.Occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		return nil, gate.StoreError(err, "occurrence", occurrenceID)
	}
	active, err := s.Bookings.CountActive(ctx, occ.ID)
	if err != nil {
		return nil, err
	}
	remaining := occ.Capacity - active
	if remaining < 0 {
		remaining = 0
	}
	return &models.OccurrenceView{Occurrence: *occ, ActiveBookings: active, Remaining: remaining}, nil
}

func validateWindow(occ *models.Occurrence) error {
	if occ.Start.IsZero() || occ.End.IsZero() {
		return apperror.Validation("start and end are required")
	}
	if !occ.End.After(occ.Start) {
		return apperror.Validation("end must be after start")
	}
	if occ.Capacity <= 0 {
		return apperror.Validation("capacity must be positive")
	}
	return nil
}

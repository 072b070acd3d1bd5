package gate

import (
	"context"

	"attendly/apperror"
	locationRepo "attendly/database/repository/location"
	offeringRepo "attendly/database/repository/offering"
	"attendly/models"
)

// Ownership resolves which provider owns an offering, location or occurrence.
type Ownership struct {
	Offerings offeringRepo.OfferingRepository
	Locations locationRepo.LocationRepository
}

func (o *Ownership) Offering(ctx context.Context, callerID, offeringID string) (*models.Offering, error) {
	off, err := o.Offerings.GetByID(ctx, offeringID)
	if err != nil {
		return nil, StoreError(err, "offering", offeringID)
	}
	if off.ProviderID != callerID {
		return nil, apperror.Newf(apperror.KindForbidden, "offering %s is not owned by caller", offeringID)
	}
	return off, nil
}

func (o *Ownership) Location(ctx context.Context, callerID, locationID string) (*models.Location, error) {
	loc, err := o.Locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, StoreError(err, "location", locationID)
	}
	if loc.ProviderID != callerID {
		return nil, apperror.Newf(apperror.KindForbidden, "location %s is not owned by caller", locationID)
	}
	return loc, nil
}

// Occurrence checks the caller owns the occurrence's offering.
func (o *Ownership) Occurrence(ctx context.Context, callerID string, occ *models.Occurrence) error {
	_, err := o.Offering(ctx, callerID, occ.OfferingID)
	return err
}

// ProviderOf returns the provider id owning the occurrence.
func (o *Ownership) ProviderOf(ctx context.Context, occ *models.Occurrence) (string, error) {
	off, err := o.Offerings.GetByID(ctx, occ.OfferingID)
	if err != nil {
		return "", StoreError(err, "offering", occ.OfferingID)
	}
	return off.ProviderID, nil
}

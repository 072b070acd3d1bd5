package models

import "time"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Occurrence is one concrete, capacity-bounded time window of an offering.
type Occurrence struct {
	ID          string    `bson:"id" json:"id"`
	OfferingID  string    `bson:"offeringId" json:"offeringId"`
	LocationID  string    `bson:"locationId,omitempty" json:"locationId,omitempty"`
	Start       time.Time `bson:"start" json:"start"`
	End         time.Time `bson:"end" json:"end"`
	Capacity    int       `bson:"capacity" json:"capacity"`
	AllowedTags []string  `bson:"allowedTags,omitempty" json:"allowedTags,omitempty"`
	GeoOverride *GeoPoint `bson:"geoOverride,omitempty" json:"geoOverride,omitempty"`
	Version     int       `bson:"version" json:"version"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Overlaps reports whether [start, end) intersects the occurrence window.
func (o *Occurrence) Overlaps(start, end time.Time) bool {
	return o.Start.Before(end) && o.End.After(start)
}

// OccurrenceView is an occurrence with its live seat usage.
type OccurrenceView struct {
	Occurrence
	ActiveBookings int `json:"activeBookings"`
	Remaining      int `json:"remaining"`
}

// CreateOccurrenceRequest is the payload for a single manual occurrence.
type CreateOccurrenceRequest struct {
	OfferingID  string    `json:"offeringId" binding:"required"`
	LocationID  string    `json:"locationId"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
	Capacity    int       `json:"capacity"`
	AllowedTags []string  `json:"allowedTags"`
	GeoOverride *GeoPoint `json:"geoOverride"`
}

// UpdateOccurrenceRequest carries the provider-editable fields. Nil means unchanged.
type UpdateOccurrenceRequest struct {
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	Capacity *int       `json:"capacity"`
}

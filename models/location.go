package models

import "time"

// Location is a physical venue owned by a provider. Its capacity and allowed tags
// are the defaults copied onto generated occurrences.
type Location struct {
	ID          string    `bson:"id" json:"id"`
	ProviderID  string    `bson:"providerId" json:"providerId"`
	Name        string    `bson:"name" json:"name"`
	Capacity    int       `bson:"capacity" json:"capacity"`
	AllowedTags []string  `bson:"allowedTags,omitempty" json:"allowedTags,omitempty"`
	Geo         *GeoPoint `bson:"geo,omitempty" json:"geo,omitempty"`
	Version     int       `bson:"version" json:"version"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Offering is the bookable template that occurrences instantiate.
type Offering struct {
	ID          string    `bson:"id" json:"id"`
	ProviderID  string    `bson:"providerId" json:"providerId"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateLocationRequest struct {
	Name        string    `json:"name" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required"`
	AllowedTags []string  `json:"allowedTags"`
	Geo         *GeoPoint `json:"geo"`
}

type CreateOfferingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

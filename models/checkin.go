package models

import "time"

// CheckInWindow is a short-lived credential scoping check-in to one occurrence.
// Only the sha256 digest of the token is persisted.
type CheckInWindow struct {
	ID           string    `bson:"id" json:"id"`
	OccurrenceID string    `bson:"occurrenceId" json:"occurrenceId"`
	TokenHash    string    `bson:"tokenHash" json:"-"`
	IssuedAt     time.Time `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	MaxUses      *int      `bson:"maxUses,omitempty" json:"maxUses,omitempty"`
	Uses         int       `bson:"uses" json:"uses"`
	IssuedBy     string    `bson:"issuedBy" json:"issuedBy"`
}

// Exhausted reports whether a max-use counter is set and spent.
func (w *CheckInWindow) Exhausted() bool {
	return w.MaxUses != nil && w.Uses >= *w.MaxUses
}

// ExpiredAt reports whether the window is no longer valid at now.
func (w *CheckInWindow) ExpiredAt(now time.Time) bool {
	return !now.Before(w.ExpiresAt)
}

// OpenWindowRequest is the provider payload for opening a check-in session.
type OpenWindowRequest struct {
	TTLMinutes int  `json:"ttlMinutes"`
	MaxUses    *int `json:"maxUses"`
}

// OpenWindowResponse carries the raw token; it is returned exactly once. QRCode
// is a PNG of the same token.
type OpenWindowResponse struct {
	WindowID     string    `json:"windowId"`
	OccurrenceID string    `json:"occurrenceId"`
	Token        string    `json:"token"`
	QRCode       []byte    `json:"qrCode"`
	ExpiresAt    time.Time `json:"expiresAt"`
	MaxUses      *int      `json:"maxUses,omitempty"`
}

// CheckInRequest is what the check-in presentation surface delivers.
type CheckInRequest struct {
	Code string `json:"code" binding:"required"`
}

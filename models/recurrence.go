package models

import "time"

// RecurrenceRequest is the ephemeral input expanded by the schedule generator.
// Exactly one of EndDate and Count may be set; when neither is, a default count applies.
type RecurrenceRequest struct {
	OfferingID      string    `json:"offeringId" binding:"required"`
	FirstStart      time.Time `json:"firstStart" binding:"required"`
	Timezone        string    `json:"timezone"`
	Weekdays        []Weekday `json:"weekdays" binding:"required"`
	EndDate         string    `json:"endDate"` // YYYY-MM-DD, inclusive
	Count           *int      `json:"count"`
	DurationMinutes int       `json:"durationMinutes"`
	Capacity        int       `json:"capacity"`
}

// LocationDefaults is the snapshot of location settings copied onto every generated
// occurrence at generation time.
type LocationDefaults struct {
	LocationID  string
	Capacity    int
	AllowedTags []string
}

// OccurrenceDraft is one candidate produced by recurrence expansion.
type OccurrenceDraft struct {
	Start       time.Time
	End         time.Time
	Capacity    int
	AllowedTags []string
}

// ScheduleResult reports a generation batch. Skipped candidates collided with an
// existing occurrence at the location.
type ScheduleResult struct {
	Created       int          `json:"created"`
	Skipped       int          `json:"skipped"`
	Occurrences   []Occurrence `json:"occurrences"`
	SkippedStarts []time.Time  `json:"skippedStarts,omitempty"`
}

// Package schedule expands recurrence rules into occurrences for one location.
package schedule

import (
	"slices"
	"time"

	"attendly/apperror"
	"attendly/models"
)

const dateLayout = "2006-01-02"

// Limits bounds expansion.
type Limits struct {
	DefaultCount  int
	MaxCandidates int
	Duration      time.Duration
}

// Expand walks forward one calendar day at a time from the first start's day and
// emits a draft at the first start's wall-clock time on every requested weekday,
// never before the first start itself. It stops at the end date (inclusive), at
// the count, or at the candidate ceiling, whichever comes first. Capacity and tags
// come from defaults unless the request overrides capacity.
func Expand(req models.RecurrenceRequest, defaults models.LocationDefaults, limits Limits) ([]models.OccurrenceDraft, error) {
	if req.FirstStart.IsZero() {
		return nil, apperror.Validation("firstStart is required")
	}
	if len(req.Weekdays) == 0 {
		return nil, apperror.Validation("at least one weekday is required")
	}
	days := make(map[time.Weekday]bool, len(req.Weekdays))
	for _, wd := range req.Weekdays {
		if wd < 0 || wd > 6 {
			return nil, apperror.Validation("weekday %d out of range", int(wd))
		}
		days[time.Weekday(wd)] = true
	}
	if req.EndDate != "" && req.Count != nil {
		return nil, apperror.Validation("give either endDate or count, not both")
	}
	if req.Count != nil && *req.Count < 1 {
		return nil, apperror.Validation("count must be at least 1")
	}

	loc := req.FirstStart.Location()
	if req.Timezone != "" {
		tz, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, apperror.Validation("unknown timezone %q", req.Timezone)
		}
		loc = tz
	}
	first := req.FirstStart.In(loc)
	y, m, d := first.Date()
	hh, mm, ss := first.Clock()
	ns := first.Nanosecond()

	var lastDay time.Time
	if req.EndDate != "" {
		end, err := time.ParseInLocation(dateLayout, req.EndDate, loc)
		if err != nil {
			return nil, apperror.Validation("endDate must be YYYY-MM-DD")
		}
		if end.Before(time.Date(y, m, d, 0, 0, 0, 0, loc)) {
			return nil, apperror.Validation("endDate %s is before the first start", req.EndDate)
		}
		lastDay = end
	}

	duration := limits.Duration
	switch {
	case req.DurationMinutes < 0:
		return nil, apperror.Validation("durationMinutes must be positive")
	case req.DurationMinutes > 0:
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}
	if duration <= 0 {
		duration = time.Hour
	}

	capacity := defaults.Capacity
	switch {
	case req.Capacity < 0:
		return nil, apperror.Validation("capacity must be positive")
	case req.Capacity > 0:
		capacity = req.Capacity
	}
	if capacity <= 0 {
		return nil, apperror.Validation("no capacity given and the location has none")
	}

	want := 0
	if lastDay.IsZero() {
		want = limits.DefaultCount
		if req.Count != nil {
			want = *req.Count
		}
	}
	ceiling := limits.MaxCandidates
	if ceiling <= 0 {
		ceiling = 1000
	}
	if want > ceiling {
		want = ceiling
	}

	drafts := make([]models.OccurrenceDraft, 0)
	for i := 0; len(drafts) < ceiling; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		if !lastDay.IsZero() && day.After(lastDay) {
			break
		}
		if !days[day.Weekday()] {
			continue
		}
		start := time.Date(y, m, d+i, hh, mm, ss, ns, loc)
		if start.Before(req.FirstStart) {
			continue
		}
		drafts = append(drafts, models.OccurrenceDraft{
			Start:       start,
			End:         start.Add(duration),
			Capacity:    capacity,
			AllowedTags: slices.Clone(defaults.AllowedTags),
		})
		if want > 0 && len(drafts) >= want {
			break
		}
	}
	return drafts, nil
}

package schedule

import (
	"context"
	"time"

	"attendly/apperror"
	"attendly/models"
	"attendly/services/gate"
	"attendly/services/occurrence"
	"attendly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleService interface {
	// Generate expands req for the location and inserts every candidate.
	// Candidates that overlap an existing occurrence are skipped and counted.
	Generate(ctx context.Context, callerID, locationID string, req models.RecurrenceRequest) (*models.ScheduleResult, error)
}

// DefaultScheduleService implements ScheduleService.
type DefaultScheduleService struct {
	Owners      *gate.Ownership
	Occurrences occurrence.OccurrenceService
	Limits      Limits
	Clock       utils.Clock
	Logger      *zap.Logger
}

func (s *DefaultScheduleService) Generate(ctx context.Context, callerID, locationID string, req models.RecurrenceRequest) (*models.ScheduleResult, error) {
	loc, err := s.Owners.Location(ctx, callerID, locationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Owners.Offering(ctx, callerID, req.OfferingID); err != nil {
		return nil, err
	}

	// Location settings are copied once, here, and never looked up again.
	defaults := models.LocationDefaults{
		LocationID:  loc.ID,
		Capacity:    loc.Capacity,
		AllowedTags: loc.AllowedTags,
	}
	drafts, err := Expand(req, defaults, s.Limits)
	if err != nil {
		return nil, err
	}

	result := &models.ScheduleResult{Occurrences: make([]models.Occurrence, 0, len(drafts))}
	for _, draft := range drafts {
		occ := &models.Occurrence{
			ID:          uuid.New().String(),
			OfferingID:  req.OfferingID,
			LocationID:  loc.ID,
			Start:       draft.Start.UTC(),
			End:         draft.End.UTC(),
			Capacity:    draft.Capacity,
			AllowedTags: draft.AllowedTags,
			CreatedAt:   s.now(),
		}
		err := s.Occurrences.Insert(ctx, occ)
		switch {
		case err == nil:
			result.Created++
			result.Occurrences = append(result.Occurrences, *occ)
		case apperror.KindOf(err) == apperror.KindOverlap:
			result.Skipped++
			result.SkippedStarts = append(result.SkippedStarts, occ.Start)
		default:
			s.logger().Error("Schedule generation aborted",
				zap.String("locationID", loc.ID),
				zap.Int("created", result.Created),
				zap.Int("skipped", result.Skipped),
				zap.Error(err))
			return result, err
		}
	}

	s.logger().Info("Schedule generated",
		zap.String("locationID", loc.ID),
		zap.String("offeringID", req.OfferingID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *DefaultScheduleService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *DefaultScheduleService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

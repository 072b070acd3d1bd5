package checkin

import (
	"context"
	"time"

	"attendly/apperror"
	"attendly/models"
	"attendly/services/gate"
	"attendly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenWindow issues a fresh token for the occurrence. Earlier windows stay valid
// until they expire.
func (s *DefaultCheckInService) OpenWindow(ctx context.Context, callerID, occurrenceID string, req models.OpenWindowRequest) (*models.OpenWindowResponse, error) {
	occ, err := s.Occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		return nil, gate.StoreError(err, "occurrence", occurrenceID)
	}
	if err := s.Owners.Occurrence(ctx, callerID, occ); err != nil {
		return nil, err
	}

	ttl := s.DefaultTTL
	if req.TTLMinutes != 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}
	if ttl <= 0 || (s.MaxTTL > 0 && ttl > s.MaxTTL) {
		return nil, apperror.Validation("ttl must be between 1 and %d minutes", int(s.MaxTTL.Minutes()))
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, apperror.Validation("maxUses must be at least 1")
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	w := &models.CheckInWindow{
		ID:           uuid.New().String(),
		OccurrenceID: occ.ID,
		TokenHash:    utils.HashToken(token),
		IssuedAt:     now,
		ExpiresAt:    now.Add(ttl),
		MaxUses:      req.MaxUses,
		IssuedBy:     callerID,
	}
	qr, err := qrPNG(token)
	if err != nil {
		return nil, err
	}
	if err := s.Windows.Create(ctx, w); err != nil {
		return nil, err
	}

	s.logger().Info("Check-in window opened",
		zap.String("windowID", w.ID),
		zap.String("occurrenceID", occ.ID),
		zap.Time("expiresAt", w.ExpiresAt))
	return &models.OpenWindowResponse{
		WindowID:     w.ID,
		OccurrenceID: occ.ID,
		Token:        token,
		ExpiresAt:    w.ExpiresAt,
		MaxUses:      w.MaxUses,
		QRCode:       qr,
	}, nil
}

// ListWindows returns the occurrence's windows, newest first. Tokens are never
// returned.
func (s *DefaultCheckInService) ListWindows(ctx context.Context, callerID, occurrenceID string) ([]models.CheckInWindow, error) {
	occ, err := s.Occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		return nil, gate.StoreError(err, "occurrence", occurrenceID)
	}
	if err := s.Owners.Occurrence(ctx, callerID, occ); err != nil {
		return nil, err
	}
	return s.Windows.ListByOccurrence(ctx, occ.ID)
}

func (s *DefaultCheckInService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *DefaultCheckInService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

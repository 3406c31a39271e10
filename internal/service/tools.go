package service

import (
	"context"
	"fmt"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// SubmitDailyUsage scores a day of water and energy use and records it as a
// simulation activity.
func (s *Service) SubmitDailyUsage(ctx context.Context, userID string, usage domain.DailyUsage) (domain.UsageResult, error) {
	if err := validateInput(usage); err != nil {
		return domain.UsageResult{}, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return domain.UsageResult{}, err
	}

	res := domain.ScoreDailyUsage(usage)
	a := domain.NewActivity(userID, domain.ActivitySimulation, res.Points, map[string]any{
		"waterUsage":  usage.WaterUsage,
		"energyUsage": usage.EnergyUsage,
		"riverImpact": res.RiverImpact,
	})
	if _, err := s.record(ctx, a); err != nil {
		return domain.UsageResult{}, err
	}
	return res, nil
}

// IrrigationRecommendation plans irrigation for a field. When the user is
// known and NASA data for their river is available the plan is adjusted for
// vegetation and precipitation; otherwise the basic plan is returned.
func (s *Service) IrrigationRecommendation(ctx context.Context, userID string, field domain.FieldData) (domain.IrrigationPlan, error) {
	if err := validateInput(field); err != nil {
		return domain.IrrigationPlan{}, err
	}

	if userID == "" {
		return domain.PlanIrrigation(field), nil
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.logger.DebugContext(ctx, "irrigation without user context", "user_id", userID, "error", err)
		return domain.PlanIrrigation(field), nil
	}

	snap, err := domain.FetchSnapshot(ctx, s.nasa, user.SelectedRiver)
	if err != nil {
		s.logger.WarnContext(ctx, "nasa snapshot unavailable, basic irrigation plan", "river", user.SelectedRiver, "error", err)
		s.metrics.NASAFallbacks.WithLabelValues("irrigation").Inc()
		return domain.PlanIrrigation(field), nil
	}
	return domain.PlanIrrigationWithNASA(field, snap.Satellite, snap.Weather), nil
}

// ValidateQRCode checks a scanned event code. Valid scans award the event's
// points through a matching activity.
func (s *Service) ValidateQRCode(ctx context.Context, userID, code, eventType string) (domain.QRResult, error) {
	t, err := domain.ParseEventType(eventType)
	if err != nil {
		return domain.QRResult{}, err
	}
	points, err := domain.CheckInPoints(t)
	if err != nil {
		return domain.QRResult{}, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return domain.QRResult{}, err
	}

	if !domain.ValidQRCode(code) {
		return domain.CheckInResult(false, t, 0), nil
	}

	a := domain.NewActivity(userID, domain.ActivityType(t), points, map[string]any{
		"qrCode":    code,
		"eventType": string(t),
	})
	if _, err := s.record(ctx, a); err != nil {
		return domain.QRResult{}, err
	}
	return domain.CheckInResult(true, t, points), nil
}

// GenerateQRCode builds the check-in code for an event.
func (s *Service) GenerateQRCode(eventID int, eventType string) (string, error) {
	if eventID <= 0 {
		return "", fmt.Errorf("%w: event id must be positive", domain.ErrInvalidInput)
	}
	t, err := domain.ParseEventType(eventType)
	if err != nil {
		return "", err
	}
	return domain.GenerateQRCode(eventID, t), nil
}

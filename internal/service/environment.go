package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// EnvironmentalData returns the river's record, refreshed from the NASA
// source when it is available. A river seen for the first time gets a
// randomized simulated record. NASA failures fall back to the stored record.
func (s *Service) EnvironmentalData(ctx context.Context, river domain.River) (domain.EnvironmentReport, error) {
	if !river.Valid() {
		return domain.EnvironmentReport{}, fmt.Errorf("%w: %q", domain.ErrInvalidRiver, river)
	}

	stored, err := s.repo.GetEnvironmentalData(ctx, river)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		stored = domain.RandomEnvironment(river, s.rnd)
		if err := s.repo.SaveEnvironmentalData(ctx, stored); err != nil {
			return domain.EnvironmentReport{}, fmt.Errorf("save environment: %w", err)
		}
	case err != nil:
		return domain.EnvironmentReport{}, fmt.Errorf("load environment: %w", err)
	}

	snap, err := domain.FetchSnapshot(ctx, s.nasa, river)
	if err != nil {
		s.logger.WarnContext(ctx, "nasa snapshot unavailable, using stored data", "river", river, "error", err)
		s.metrics.NASAFallbacks.WithLabelValues("environment").Inc()
		return domain.EnvironmentReport{EnvironmentalData: stored}, nil
	}

	enhanced := stored.WithNASA(snap)
	if err := s.repo.SaveEnvironmentalData(ctx, enhanced); err != nil {
		return domain.EnvironmentReport{}, fmt.Errorf("save environment: %w", err)
	}
	return domain.EnvironmentReport{EnvironmentalData: enhanced, NASAData: &snap}, nil
}

// UpdateEnvironmentalData merges patch over the stored record, or over the
// defaults when the river has none.
func (s *Service) UpdateEnvironmentalData(ctx context.Context, river domain.River, patch domain.EnvironmentPatch) (domain.EnvironmentalData, error) {
	if !river.Valid() {
		return domain.EnvironmentalData{}, fmt.Errorf("%w: %q", domain.ErrInvalidRiver, river)
	}
	if err := validateInput(patch); err != nil {
		return domain.EnvironmentalData{}, err
	}

	current, err := s.repo.GetEnvironmentalData(ctx, river)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		current = domain.DefaultEnvironment(river)
	case err != nil:
		return domain.EnvironmentalData{}, fmt.Errorf("load environment: %w", err)
	}

	updated := patch.Apply(current)
	if err := s.repo.SaveEnvironmentalData(ctx, updated); err != nil {
		return domain.EnvironmentalData{}, fmt.Errorf("save environment: %w", err)
	}
	return updated, nil
}

// RefreshAll refreshes every river. Failures are logged per river and
// returned joined.
func (s *Service) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, r := range domain.Rivers() {
		if _, err := s.EnvironmentalData(ctx, r); err != nil {
			s.logger.ErrorContext(ctx, "refresh failed", "river", r, "error", err)
			s.metrics.Refreshes.WithLabelValues("error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
			continue
		}
		s.metrics.Refreshes.WithLabelValues("success").Inc()
	}
	return errors.Join(errs...)
}

// NASAData returns the requested dataset for river straight from the source.
func (s *Service) NASAData(ctx context.Context, river domain.River, dataset domain.Dataset) (any, error) {
	return domain.Fetch(ctx, s.nasa, river, dataset)
}

// Predictions forecasts flood, pollution and temperature for river from NASA
// data, or from simulated values when the source fails.
func (s *Service) Predictions(ctx context.Context, river domain.River) (domain.Predictions, error) {
	if !river.Valid() {
		return domain.Predictions{}, fmt.Errorf("%w: %q", domain.ErrInvalidRiver, river)
	}
	snap, err := domain.FetchSnapshot(ctx, s.nasa, river)
	if err != nil {
		s.logger.WarnContext(ctx, "nasa snapshot unavailable, simulating predictions", "river", river, "error", err)
		s.metrics.NASAFallbacks.WithLabelValues("predictions").Inc()
		return domain.PredictSimulated(s.rnd), nil
	}
	return domain.PredictFromNASA(snap.Satellite, snap.Weather), nil
}

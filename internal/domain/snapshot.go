package domain

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FetchSnapshot loads all three datasets for river concurrently.
func FetchSnapshot(ctx context.Context, src NASASource, river River) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wq, err := src.WaterQuality(ctx, river)
		if err != nil {
			return fmt.Errorf("water quality: %w", err)
		}
		snap.WaterQuality = wq
		return nil
	})
	g.Go(func() error {
		sat, err := src.Satellite(ctx, river)
		if err != nil {
			return fmt.Errorf("satellite: %w", err)
		}
		snap.Satellite = sat
		return nil
	})
	g.Go(func() error {
		wx, err := src.Weather(ctx, river)
		if err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		snap.Weather = wx
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Fetch returns the dataset selected by d: one of the three records, or the
// full snapshot for DatasetAll.
func Fetch(ctx context.Context, src NASASource, river River, d Dataset) (any, error) {
	switch d {
	case DatasetWater:
		return src.WaterQuality(ctx, river)
	case DatasetSatellite:
		return src.Satellite(ctx, river)
	case DatasetWeather:
		return src.Weather(ctx, river)
	default:
		return FetchSnapshot(ctx, src, river)
	}
}

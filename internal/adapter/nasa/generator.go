// Package nasa simulates NASA water-quality, satellite and weather feeds.
package nasa

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/jonboulle/clockwork"
)

const extremeWeatherProbability = 0.1

// Generator implements domain.NASASource by jittering each river's
// baseline values.
type Generator struct {
	rnd     domain.Random
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewGenerator creates a Generator. Pass a seeded domain.Random for
// reproducible output.
func NewGenerator(rnd domain.Random, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{rnd: rnd, clock: clock, logger: logger, metrics: metrics}
}

func (g *Generator) value(river domain.River, p domain.Parameter) float64 {
	return domain.Jitter(domain.Baseline(river, p), g.rnd.Float64())
}

func (g *Generator) check(ctx context.Context, dataset domain.Dataset, river domain.River) error {
	if err := ctx.Err(); err != nil {
		g.metrics.NASARequests.WithLabelValues(string(dataset), "error").Inc()
		return err
	}
	if _, err := domain.ParseRiver(string(river)); err != nil {
		g.metrics.NASARequests.WithLabelValues(string(dataset), "error").Inc()
		return err
	}
	g.metrics.NASARequests.WithLabelValues(string(dataset), "success").Inc()
	return nil
}

func (g *Generator) WaterQuality(ctx context.Context, river domain.River) (domain.WaterQuality, error) {
	if err := g.check(ctx, domain.DatasetWater, river); err != nil {
		return domain.WaterQuality{}, err
	}
	wq := domain.WaterQuality{
		Chlorophyll:    g.value(river, domain.ParamChlorophyll),
		Turbidity:      g.value(river, domain.ParamTurbidity),
		Temperature:    g.value(river, domain.ParamTemperature),
		OxygenLevel:    g.value(river, domain.ParamOxygen),
		PollutionIndex: g.value(river, domain.ParamPollution),
		LastUpdated:    g.clock.Now().UTC(),
	}
	g.logger.Debug("generated water quality", "river", river, "temperature", wq.Temperature)
	return wq, nil
}

func (g *Generator) Satellite(ctx context.Context, river domain.River) (domain.SatelliteData, error) {
	if err := g.check(ctx, domain.DatasetSatellite, river); err != nil {
		return domain.SatelliteData{}, err
	}
	profile, _ := domain.Profile(river)
	sat := domain.SatelliteData{
		Coordinates:   [2]float64{profile.Coordinates.Lat, profile.Coordinates.Lon},
		Vegetation:    g.value(river, domain.ParamVegetation),
		WaterCoverage: g.value(river, domain.ParamWater),
		LandUse:       profile.LandUse,
		ChangeDetection: domain.ChangeDetection{
			Deforestation: g.value(river, domain.ParamDeforestation),
			Urbanization:  g.value(river, domain.ParamUrbanization),
			WaterLoss:     g.value(river, domain.ParamWaterLoss),
		},
	}
	g.logger.Debug("generated satellite data", "river", river, "vegetation", sat.Vegetation)
	return sat, nil
}

func (g *Generator) Weather(ctx context.Context, river domain.River) (domain.WeatherData, error) {
	if err := g.check(ctx, domain.DatasetWeather, river); err != nil {
		return domain.WeatherData{}, err
	}
	profile, _ := domain.Profile(river)
	wx := domain.WeatherData{
		Temperature:   g.value(river, domain.ParamAirTemp),
		Precipitation: g.value(river, domain.ParamRain),
		Humidity:      g.value(river, domain.ParamHumidity),
		WindSpeed:     g.value(river, domain.ParamWind),
		Forecast: domain.Forecast{
			FloodRisk:      profile.FloodRisk,
			DroughtRisk:    profile.DroughtRisk,
			ExtremeWeather: g.rnd.Float64() < extremeWeatherProbability,
		},
	}
	g.logger.Debug("generated weather", "river", river, "precipitation", wx.Precipitation)
	return wx, nil
}

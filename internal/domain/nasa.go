package domain

import (
	"context"
	"time"
)

// WaterQuality is a simulated water-quality reading.
type WaterQuality struct {
	Chlorophyll    float64   `json:"chlorophyll"`    // mg/m³
	Turbidity      float64   `json:"turbidity"`      // NTU
	Temperature    float64   `json:"temperature"`    // °C
	OxygenLevel    float64   `json:"oxygenLevel"`    // mg/L
	PollutionIndex float64   `json:"pollutionIndex"` // 0-1
	LastUpdated    time.Time `json:"lastUpdated"`
}

// ChangeDetection holds year-over-year land-change fractions.
type ChangeDetection struct {
	Deforestation float64 `json:"deforestation"`
	Urbanization  float64 `json:"urbanization"`
	WaterLoss     float64 `json:"waterLoss"`
}

// SatelliteData is a simulated satellite observation of a river basin.
type SatelliteData struct {
	Coordinates     [2]float64      `json:"coordinates"` // [lat, lon]
	Vegetation      float64         `json:"vegetation"`  // NDVI
	WaterCoverage   float64         `json:"waterCoverage"`
	LandUse         string          `json:"landUse"`
	ChangeDetection ChangeDetection `json:"changeDetection"`
}

// Forecast is the short-range outlook attached to weather data.
type Forecast struct {
	FloodRisk      Risk `json:"floodRisk"`
	DroughtRisk    Risk `json:"droughtRisk"`
	ExtremeWeather bool `json:"extremeWeather"`
}

// WeatherData is a simulated weather reading.
type WeatherData struct {
	Temperature   float64  `json:"temperature"`   // °C
	Precipitation float64  `json:"precipitation"` // mm
	Humidity      float64  `json:"humidity"`      // %
	WindSpeed     float64  `json:"windSpeed"`     // km/h
	Forecast      Forecast `json:"forecast"`
}

// Snapshot bundles all three datasets for one river.
type Snapshot struct {
	WaterQuality WaterQuality  `json:"waterQuality"`
	Satellite    SatelliteData `json:"satellite"`
	Weather      WeatherData   `json:"weather"`
}

// Dataset names a NASA data family. Used for cache keys, metrics labels and
// the type query parameter of the public route.
type Dataset string

const (
	DatasetWater     Dataset = "water"
	DatasetSatellite Dataset = "satellite"
	DatasetWeather   Dataset = "weather"
	DatasetAll       Dataset = "all"
)

// ParseDataset maps a query value to a dataset. Anything unrecognised,
// including the empty string, means all datasets.
func ParseDataset(s string) Dataset {
	switch Dataset(s) {
	case DatasetWater, DatasetSatellite, DatasetWeather:
		return Dataset(s)
	default:
		return DatasetAll
	}
}

// NASASource provides simulated NASA datasets for a river.
type NASASource interface {
	WaterQuality(ctx context.Context, river River) (WaterQuality, error)
	Satellite(ctx context.Context, river River) (SatelliteData, error)
	Weather(ctx context.Context, river River) (WeatherData, error)
}

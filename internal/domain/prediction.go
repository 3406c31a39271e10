package domain

// FloodForecast is a flood risk score in [0, 100].
type FloodForecast struct {
	Risk    float64 `json:"risk"`
	Message string  `json:"message"`
	Source  string  `json:"source"`
}

// PollutionForecast is a pollution level in [0, 100].
type PollutionForecast struct {
	Level   float64 `json:"level"`
	Message string  `json:"message"`
	Source  string  `json:"source"`
}

// TemperatureForecast is a change in °C against a 25 °C reference.
type TemperatureForecast struct {
	Change  float64 `json:"change"`
	Message string  `json:"message"`
	Source  string  `json:"source"`
}

// ChangeInsights are land-change fractions expressed as percentages.
type ChangeInsights struct {
	Deforestation float64 `json:"deforestation"`
	Urbanization  float64 `json:"urbanization"`
	WaterLoss     float64 `json:"waterLoss"`
}

// Predictions groups the flood, pollution and temperature forecasts.
type Predictions struct {
	Flood        FloodForecast       `json:"flood"`
	Pollution    PollutionForecast   `json:"pollution"`
	Temperature  TemperatureForecast `json:"temperature"`
	NASAInsights *ChangeInsights     `json:"nasaInsights,omitempty"`
}

const (
	highThreshold     = 70
	moderateThreshold = 40
	tempSwing         = 2
	referenceAirTemp  = 25

	sourceNASAWeather   = "NASA Weather Data"
	sourceNASASatellite = "NASA Satellite Imagery"
	sourceNASASensors   = "NASA Environmental Sensors"
	sourceSimulated     = "Simulated Data"
)

var floodRiskScore = map[Risk]float64{RiskHigh: 85, RiskMedium: 50}

// PredictFromNASA derives predictions from satellite and weather data.
func PredictFromNASA(sat SatelliteData, wx WeatherData) Predictions {
	flood, ok := floodRiskScore[wx.Forecast.FloodRisk]
	if !ok {
		flood = 25
	}
	floodMsg := "NASA monitoring shows low flood risk"
	switch wx.Forecast.FloodRisk {
	case RiskHigh:
		floodMsg = "NASA data shows high flood risk in next 48 hours"
	case RiskMedium:
		floodMsg = "NASA satellites detect moderate flood risk this week"
	}

	pollution := sat.ChangeDetection.Urbanization * 100
	pollutionMsg := "NASA data confirms good water quality"
	switch {
	case pollution > highThreshold:
		pollutionMsg = "NASA satellites detect high pollution levels"
	case pollution > moderateThreshold:
		pollutionMsg = "NASA monitoring shows moderate pollution levels"
	}

	change := wx.Temperature - referenceAirTemp
	tempMsg := "NASA monitoring shows stable temperature"
	switch {
	case change > tempSwing:
		tempMsg = "NASA sensors show temperature rising significantly"
	case change < -tempSwing:
		tempMsg = "NASA data indicates temperature dropping significantly"
	}

	return Predictions{
		Flood:        FloodForecast{Risk: flood, Message: floodMsg, Source: sourceNASAWeather},
		Pollution:    PollutionForecast{Level: pollution, Message: pollutionMsg, Source: sourceNASASatellite},
		Temperature:  TemperatureForecast{Change: change, Message: tempMsg, Source: sourceNASASensors},
		NASAInsights: &ChangeInsights{
			Deforestation: sat.ChangeDetection.Deforestation * 100,
			Urbanization:  sat.ChangeDetection.Urbanization * 100,
			WaterLoss:     sat.ChangeDetection.WaterLoss * 100,
		},
	}
}

// PredictSimulated is the fallback when no NASA data is available.
func PredictSimulated(rnd Random) Predictions {
	flood := rnd.Float64() * 100
	pollution := rnd.Float64() * 100
	change := (rnd.Float64() - 0.5) * 4

	floodMsg := "Low flood risk"
	switch {
	case flood > highThreshold:
		floodMsg = "High flood risk in next 48 hours"
	case flood > moderateThreshold:
		floodMsg = "Moderate flood risk this week"
	}

	pollutionMsg := "Good water quality"
	switch {
	case pollution > highThreshold:
		pollutionMsg = "High pollution levels detected"
	case pollution > moderateThreshold:
		pollutionMsg = "Moderate pollution levels"
	}

	tempMsg := "Stable temperature"
	switch {
	case change > tempSwing:
		tempMsg = "Temperature rising significantly"
	case change < -tempSwing:
		tempMsg = "Temperature dropping significantly"
	}

	return Predictions{
		Flood:       FloodForecast{Risk: flood, Message: floodMsg, Source: sourceSimulated},
		Pollution:   PollutionForecast{Level: pollution, Message: pollutionMsg, Source: sourceSimulated},
		Temperature: TemperatureForecast{Change: change, Message: tempMsg, Source: sourceSimulated},
	}
}

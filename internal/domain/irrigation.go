package domain

import "fmt"

// FieldData describes a farmer's field for an irrigation recommendation.
type FieldData struct {
	CropType     string  `json:"cropType"`
	SoilMoisture float64 `json:"soilMoisture" validate:"gte=0,lte=100"` // percent
	Weather      string  `json:"weather"`
}

// NASAInsights summarizes the satellite inputs behind a recommendation.
type NASAInsights struct {
	VegetationHealth      float64 `json:"vegetationHealth"`
	PrecipitationForecast float64 `json:"precipitationForecast"`
	SoilConditions        string  `json:"soilConditions"`
}

// IrrigationPlan is a watering recommendation.
type IrrigationPlan struct {
	Recommendation string        `json:"recommendation"`
	WaterAmount    float64       `json:"waterAmount"` // liters per square meter
	Timing         string        `json:"timing"`
	Efficiency     int           `json:"efficiency"`
	NASAInsights   *NASAInsights `json:"nasaInsights,omitempty"`
}

type cropProfile struct {
	baseWater  float64
	timing     string
	efficiency int
}

var crops = map[string]cropProfile{
	"corn":     {baseWater: 25, timing: "Early morning", efficiency: 85},
	"wheat":    {baseWater: 20, timing: "Evening", efficiency: 90},
	"rice":     {baseWater: 40, timing: "Morning", efficiency: 75},
	"tomatoes": {baseWater: 30, timing: "Early morning", efficiency: 80},
}

const (
	lushVegetation     = 0.7
	heavyPrecipitation = 50
	maxNASAEfficiency  = 95
)

func crop(name string) cropProfile {
	if c, ok := crops[name]; ok {
		return c
	}
	return crops["corn"]
}

func moistureAdjustment(soil float64) float64 {
	return (100 - soil) / 100
}

// PlanIrrigation is the recommendation without satellite data.
func PlanIrrigation(f FieldData) IrrigationPlan {
	c := crop(f.CropType)
	amount := c.baseWater * (1 + moistureAdjustment(f.SoilMoisture))

	msg := fmt.Sprintf("Apply %.1fL per square meter", amount)
	if f.Weather == "rainy" {
		msg += ". Reduce by 50% due to expected rainfall."
	}
	return IrrigationPlan{
		Recommendation: msg,
		WaterAmount:    amount,
		Timing:         c.timing,
		Efficiency:     c.efficiency,
	}
}

// PlanIrrigationWithNASA scales the recommendation by vegetation health and
// forecast precipitation.
func PlanIrrigationWithNASA(f FieldData, sat SatelliteData, wx WeatherData) IrrigationPlan {
	c := crop(f.CropType)

	vegetationFactor := 1.1
	if sat.Vegetation > lushVegetation {
		vegetationFactor = 0.9
	}
	precipitationFactor := 1.0
	if wx.Precipitation > heavyPrecipitation {
		precipitationFactor = 0.7
	}
	amount := c.baseWater * (1 + moistureAdjustment(f.SoilMoisture)) * vegetationFactor * precipitationFactor

	msg := fmt.Sprintf("NASA-optimized: Apply %.1fL per square meter", amount)
	if wx.Precipitation > heavyPrecipitation {
		msg += ". NASA forecasts high precipitation - reduce irrigation by 30%."
	}
	return IrrigationPlan{
		Recommendation: msg,
		WaterAmount:    amount,
		Timing:         c.timing,
		Efficiency:     min(maxNASAEfficiency, c.efficiency+5),
		NASAInsights: &NASAInsights{
			VegetationHealth:      sat.Vegetation * 100,
			PrecipitationForecast: wx.Precipitation,
			SoilConditions:        sat.LandUse,
		},
	}
}

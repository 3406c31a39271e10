package domain

// DailyUsage is a household's self-reported consumption for one day.
type DailyUsage struct {
	WaterUsage  float64 `json:"waterUsage" validate:"gte=0"`  // liters
	EnergyUsage float64 `json:"energyUsage" validate:"gte=0"` // kWh
}

// UsageResult is the scored impact of a DailyUsage.
type UsageResult struct {
	RiverImpact float64  `json:"riverImpact"`
	Points      int      `json:"points"`
	Tips        []string `json:"tips"`
}

const (
	heavyWaterUsage  = 200
	heavyEnergyUsage = 150
)

// ScoreDailyUsage rewards usage below 100 units of water and energy.
func ScoreDailyUsage(u DailyUsage) UsageResult {
	waterImpact := max(0, 100-u.WaterUsage)
	energyImpact := max(0, 100-u.EnergyUsage)
	impact := (waterImpact + energyImpact) / 2

	var tips []string
	if u.WaterUsage > heavyWaterUsage {
		tips = append(tips, "Try shorter showers to save water", "Fix any leaky faucets")
	}
	if u.EnergyUsage > heavyEnergyUsage {
		tips = append(tips, "Use LED bulbs to reduce energy consumption", "Unplug devices when not in use")
	}
	if len(tips) == 0 {
		tips = append(tips, "Great job! Your usage is environmentally friendly")
	}

	return UsageResult{
		RiverImpact: impact,
		Points:      int(impact / 10),
		Tips:        tips,
	}
}

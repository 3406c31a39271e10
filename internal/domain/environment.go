package domain

import "time"

// DataSource records where an environmental record came from.
type DataSource string

const (
	SourceNASA      DataSource = "nasa"
	SourceSimulated DataSource = "simulated"
	SourceMixed     DataSource = "mixed"
)

// EnvironmentalData is the stored health summary for a river.
type EnvironmentalData struct {
	River        River      `json:"river"`
	Temperature  float64    `json:"temperature"`
	Vegetation   float64    `json:"vegetation"`
	Pollution    float64    `json:"pollution"`
	WaterLevel   float64    `json:"waterLevel"`
	LastUpdated  time.Time  `json:"lastUpdated"`
	DataSource   DataSource `json:"dataSource"`
	NASALastSync *time.Time `json:"nasaLastSync,omitempty"`
}

// EnvironmentPatch is a partial update to an environmental record.
type EnvironmentPatch struct {
	Temperature *float64    `json:"temperature,omitempty"`
	Vegetation  *float64    `json:"vegetation,omitempty"`
	Pollution   *float64    `json:"pollution,omitempty"`
	WaterLevel  *float64    `json:"waterLevel,omitempty"`
	DataSource  *DataSource `json:"dataSource,omitempty" validate:"omitempty,oneof=nasa simulated mixed"`
}

// DefaultEnvironment is the record used when an update targets a river with
// nothing stored yet.
func DefaultEnvironment(river River) EnvironmentalData {
	return EnvironmentalData{
		River:       river,
		Temperature: 25,
		Vegetation:  70,
		Pollution:   30,
		WaterLevel:  80,
		LastUpdated: Now(),
		DataSource:  SourceSimulated,
	}
}

// RandomEnvironment seeds a first reading for a river with nothing stored.
func RandomEnvironment(river River, rnd Random) EnvironmentalData {
	return EnvironmentalData{
		River:       river,
		Temperature: 25 + rnd.Float64()*10,
		Vegetation:  60 + rnd.Float64()*30,
		Pollution:   20 + rnd.Float64()*40,
		WaterLevel:  70 + rnd.Float64()*20,
		LastUpdated: Now(),
		DataSource:  SourceSimulated,
	}
}

// Apply merges p over e and stamps the update time. Without an explicit data
// source the record is marked simulated.
func (p EnvironmentPatch) Apply(e EnvironmentalData) EnvironmentalData {
	if p.Temperature != nil {
		e.Temperature = *p.Temperature
	}
	if p.Vegetation != nil {
		e.Vegetation = *p.Vegetation
	}
	if p.Pollution != nil {
		e.Pollution = *p.Pollution
	}
	if p.WaterLevel != nil {
		e.WaterLevel = *p.WaterLevel
	}
	e.DataSource = SourceSimulated
	if p.DataSource != nil {
		e.DataSource = *p.DataSource
	}
	e.LastUpdated = Now()
	return e
}

// WithNASA overwrites e with readings from a NASA snapshot.
func (e EnvironmentalData) WithNASA(s Snapshot) EnvironmentalData {
	now := Now()
	e.Temperature = s.WaterQuality.Temperature
	e.Vegetation = s.Satellite.Vegetation * 100
	e.Pollution = s.WaterQuality.PollutionIndex * 100
	e.WaterLevel = s.Satellite.WaterCoverage * 100
	e.LastUpdated = s.WaterQuality.LastUpdated
	e.DataSource = SourceNASA
	e.NASALastSync = &now
	return e
}

// EnvironmentReport is an environmental record plus the NASA snapshot it was
// built from, when one was available.
type EnvironmentReport struct {
	EnvironmentalData
	NASAData *Snapshot `json:"nasaData,omitempty"`
}

// SampleEnvironment is the seed data written on first start.
func SampleEnvironment() []EnvironmentalData {
	now := Now()
	return []EnvironmentalData{
		{River: Nile, Temperature: 28, Vegetation: 65, Pollution: 45, WaterLevel: 75, LastUpdated: now, DataSource: SourceSimulated},
		{River: Amazon, Temperature: 26, Vegetation: 85, Pollution: 25, WaterLevel: 90, LastUpdated: now, DataSource: SourceSimulated},
		{River: Yangtze, Temperature: 22, Vegetation: 55, Pollution: 60, WaterLevel: 70, LastUpdated: now, DataSource: SourceSimulated},
	}
}

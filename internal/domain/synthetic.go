package domain

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Parameter names a simulated measurement with a per-river baseline.
type Parameter string

const (
	ParamChlorophyll   Parameter = "chlorophyll"
	ParamTurbidity     Parameter = "turbidity"
	ParamTemperature   Parameter = "temperature"
	ParamOxygen        Parameter = "oxygen"
	ParamPollution     Parameter = "pollution"
	ParamVegetation    Parameter = "vegetation"
	ParamWater         Parameter = "water"
	ParamDeforestation Parameter = "deforestation"
	ParamUrbanization  Parameter = "urbanization"
	ParamWaterLoss     Parameter = "waterLoss"
	ParamAirTemp       Parameter = "temp"
	ParamRain          Parameter = "rain"
	ParamHumidity      Parameter = "humidity"
	ParamWind          Parameter = "wind"
)

var baselines = map[River]map[Parameter]float64{
	Nile: {
		ParamChlorophyll: 15, ParamTurbidity: 25, ParamTemperature: 28, ParamOxygen: 7.2, ParamPollution: 0.6,
		ParamVegetation: 0.3, ParamWater: 0.4,
		ParamDeforestation: 0.02, ParamUrbanization: 0.15, ParamWaterLoss: 0.08,
		ParamAirTemp: 32, ParamRain: 2, ParamHumidity: 45, ParamWind: 12,
	},
	Amazon: {
		ParamChlorophyll: 8, ParamTurbidity: 15, ParamTemperature: 26, ParamOxygen: 8.1, ParamPollution: 0.3,
		ParamVegetation: 0.85, ParamWater: 0.7,
		ParamDeforestation: 0.05, ParamUrbanization: 0.03, ParamWaterLoss: 0.02,
		ParamAirTemp: 27, ParamRain: 180, ParamHumidity: 85, ParamWind: 8,
	},
	Yangtze: {
		ParamChlorophyll: 22, ParamTurbidity: 35, ParamTemperature: 24, ParamOxygen: 6.8, ParamPollution: 0.8,
		ParamVegetation: 0.5, ParamWater: 0.6,
		ParamDeforestation: 0.01, ParamUrbanization: 0.25, ParamWaterLoss: 0.12,
		ParamAirTemp: 25, ParamRain: 45, ParamHumidity: 70, ParamWind: 15,
	},
}

// Baseline returns the base value of p for river, or 0 when unknown.
func Baseline(river River, p Parameter) float64 {
	return baselines[river][p]
}

// Jitter applies the ±5% variation to base using r ∈ [0, 1), rounded to
// two decimals.
func Jitter(base, r float64) float64 {
	return Round2(base + (r-0.5)*base*0.1)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Random is a source of uniform floats in [0, 1).
type Random interface {
	Float64() float64
}

// LockedRand is a Random that is safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Independent random streams derived from one seed.
const (
	StreamNASA       uint64 = 0
	StreamSimulation uint64 = 1
)

// NewRand returns a PCG-backed LockedRand on StreamNASA. A zero seed picks one
// from the current time.
func NewRand(seed uint64) *LockedRand {
	return NewRandStream(seed, StreamNASA)
}

// NewRandStream returns a LockedRand for stream. Different streams of the same
// seed produce unrelated sequences.
func NewRandStream(seed, stream uint64) *LockedRand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &LockedRand{rng: rand.New(rand.NewPCG(seed, (seed^0x9e3779b97f4a7c15)+stream))}
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

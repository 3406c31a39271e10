// Command validate checks a fixture written by cmd/seed: it regenerates the
// simulated NASA snapshots from the recorded seed, verifies every value stays
// within its river baseline band, and checks the users, leaderboard and
// environmental records. With -db it also compares the fixture against the
// seeded SQLite database.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -fixture data/mock/breathing_rivers_fixture.json \
//	  -db data/breathing_rivers.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/adapter/nasa"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/sqlite"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/jonboulle/clockwork"
)

// roundingSlack absorbs the two-decimal rounding applied after jitter.
const roundingSlack = 0.005

type fixture struct {
	GeneratedAt time.Time                        `json:"generatedAt"`
	Seed        uint64                           `json:"seed"`
	Users       []domain.User                    `json:"users"`
	Leaderboard []domain.LeaderboardEntry        `json:"leaderboard"`
	Environment []domain.EnvironmentalData       `json:"environment"`
	NASA        map[domain.River]domain.Snapshot `json:"nasa"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixturePath := flag.String("fixture", "", "path to the JSON fixture written by cmd/seed")
	dbPath := flag.String("db", "", "optional SQLite database to compare against the fixture")
	flag.Parse()

	if *fixturePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*fixturePath, *dbPath))
}

func run(fixturePath, dbPath string) int {
	fmt.Println("=== Breathing Rivers Fixture Validation ===")
	fmt.Println()

	fx, err := loadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReproducibility(fx),
		validateNASARanges(fx),
		validateUsers(fx),
		validateEnvironment(fx),
	}
	if dbPath != "" {
		phases = append(phases, validateDatabase(fx, dbPath))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d users, %d leaderboard entries, %d environmental records, %d NASA snapshots\n",
		len(fx.Users), len(fx.Leaderboard), len(fx.Environment), len(fx.NASA))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fixture{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return fx, nil
}

// ── NASA data ──

// validateReproducibility regenerates the snapshots with the fixture's seed
// and requires identical values.
func validateReproducibility(fx fixture) *phase {
	p := &phase{name: "NASA snapshots reproducible from seed"}
	if fx.Seed == 0 {
		p.errorf("fixture has no seed")
		return p
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := nasa.NewGenerator(domain.NewRand(fx.Seed), clockwork.NewFakeClockAt(fx.GeneratedAt), logger, observability.NewMetricsForTesting())
	ctx := context.Background()

	for _, r := range domain.Rivers() {
		want, ok := fx.NASA[r]
		if !ok {
			p.errorf("%s: missing snapshot", r)
			continue
		}
		wq, err := gen.WaterQuality(ctx, r)
		if err != nil {
			p.errorf("%s: %v", r, err)
			continue
		}
		sat, err := gen.Satellite(ctx, r)
		if err != nil {
			p.errorf("%s: %v", r, err)
			continue
		}
		wx, err := gen.Weather(ctx, r)
		if err != nil {
			p.errorf("%s: %v", r, err)
			continue
		}

		if !want.WaterQuality.LastUpdated.Equal(wq.LastUpdated) {
			p.errorf("%s: waterQuality.lastUpdated %s, regenerated %s", r, want.WaterQuality.LastUpdated, wq.LastUpdated)
		}
		compare(p, r, "waterQuality.chlorophyll", want.WaterQuality.Chlorophyll, wq.Chlorophyll)
		compare(p, r, "waterQuality.turbidity", want.WaterQuality.Turbidity, wq.Turbidity)
		compare(p, r, "waterQuality.temperature", want.WaterQuality.Temperature, wq.Temperature)
		compare(p, r, "waterQuality.oxygenLevel", want.WaterQuality.OxygenLevel, wq.OxygenLevel)
		compare(p, r, "waterQuality.pollutionIndex", want.WaterQuality.PollutionIndex, wq.PollutionIndex)
		compare(p, r, "satellite.vegetation", want.Satellite.Vegetation, sat.Vegetation)
		compare(p, r, "satellite.waterCoverage", want.Satellite.WaterCoverage, sat.WaterCoverage)
		compare(p, r, "satellite.changeDetection.deforestation", want.Satellite.ChangeDetection.Deforestation, sat.ChangeDetection.Deforestation)
		compare(p, r, "satellite.changeDetection.urbanization", want.Satellite.ChangeDetection.Urbanization, sat.ChangeDetection.Urbanization)
		compare(p, r, "satellite.changeDetection.waterLoss", want.Satellite.ChangeDetection.WaterLoss, sat.ChangeDetection.WaterLoss)
		compare(p, r, "weather.temperature", want.Weather.Temperature, wx.Temperature)
		compare(p, r, "weather.precipitation", want.Weather.Precipitation, wx.Precipitation)
		compare(p, r, "weather.humidity", want.Weather.Humidity, wx.Humidity)
		compare(p, r, "weather.windSpeed", want.Weather.WindSpeed, wx.WindSpeed)
		if want.Weather.Forecast != wx.Forecast {
			p.errorf("%s: forecast %+v, regenerated %+v", r, want.Weather.Forecast, wx.Forecast)
		}
	}
	return p
}

func compare(p *phase, r domain.River, field string, want, got float64) {
	if !floatEq(want, got) {
		p.errorf("%s: %s = %v, regenerated %v", r, field, want, got)
	}
}

// validateNASARanges checks every value against its river baseline band and
// the static catalogue fields.
func validateNASARanges(fx fixture) *phase {
	p := &phase{name: "NASA values within baseline band"}
	for r, snap := range fx.NASA {
		profile, ok := domain.Profile(r)
		if !ok {
			p.errorf("unknown river %q", r)
			continue
		}
		checks := []struct {
			param domain.Parameter
			value float64
		}{
			{domain.ParamChlorophyll, snap.WaterQuality.Chlorophyll},
			{domain.ParamTurbidity, snap.WaterQuality.Turbidity},
			{domain.ParamTemperature, snap.WaterQuality.Temperature},
			{domain.ParamOxygen, snap.WaterQuality.OxygenLevel},
			{domain.ParamPollution, snap.WaterQuality.PollutionIndex},
			{domain.ParamVegetation, snap.Satellite.Vegetation},
			{domain.ParamWater, snap.Satellite.WaterCoverage},
			{domain.ParamDeforestation, snap.Satellite.ChangeDetection.Deforestation},
			{domain.ParamUrbanization, snap.Satellite.ChangeDetection.Urbanization},
			{domain.ParamWaterLoss, snap.Satellite.ChangeDetection.WaterLoss},
			{domain.ParamAirTemp, snap.Weather.Temperature},
			{domain.ParamRain, snap.Weather.Precipitation},
			{domain.ParamHumidity, snap.Weather.Humidity},
			{domain.ParamWind, snap.Weather.WindSpeed},
		}
		for _, c := range checks {
			base := domain.Baseline(r, c.param)
			band := base*0.05 + roundingSlack
			if math.Abs(c.value-base) > band {
				p.errorf("%s: %s = %v outside %v ± %v", r, c.param, c.value, base, band)
			}
		}

		wantCoords := [2]float64{profile.Coordinates.Lat, profile.Coordinates.Lon}
		if snap.Satellite.Coordinates != wantCoords {
			p.errorf("%s: coordinates %v, want %v", r, snap.Satellite.Coordinates, wantCoords)
		}
		if snap.Satellite.LandUse != profile.LandUse {
			p.errorf("%s: landUse %q, want %q", r, snap.Satellite.LandUse, profile.LandUse)
		}
		if snap.Weather.Forecast.FloodRisk != profile.FloodRisk || snap.Weather.Forecast.DroughtRisk != profile.DroughtRisk {
			p.errorf("%s: forecast risks %s/%s, want %s/%s", r,
				snap.Weather.Forecast.FloodRisk, snap.Weather.Forecast.DroughtRisk, profile.FloodRisk, profile.DroughtRisk)
		}
	}
	return p
}

// ── Users ──

func validateUsers(fx fixture) *phase {
	p := &phase{name: "Users and leaderboard consistent"}

	emails := make(map[string]bool, len(fx.Users))
	byID := make(map[string]domain.User, len(fx.Users))
	for i, u := range fx.Users {
		if u.ID == "" {
			p.errorf("user[%d] %q: missing id", i, u.Name)
		}
		if emails[u.Email] {
			p.errorf("user[%d]: duplicate email %q", i, u.Email)
		}
		emails[u.Email] = true
		byID[u.ID] = u

		if _, err := domain.ParseRole(string(u.Role)); err != nil {
			p.errorf("user[%d] %s: %v", i, u.Email, err)
		}
		if !u.SelectedRiver.Valid() {
			p.errorf("user[%d] %s: invalid river %q", i, u.Email, u.SelectedRiver)
		}
		if u.Points < 0 || u.Level < 1 {
			p.errorf("user[%d] %s: points %d level %d", i, u.Email, u.Points, u.Level)
		}
	}

	if len(fx.Leaderboard) > domain.LeaderboardSize {
		p.errorf("leaderboard has %d entries, limit %d", len(fx.Leaderboard), domain.LeaderboardSize)
	}
	if !slices.IsSortedFunc(fx.Leaderboard, func(a, b domain.LeaderboardEntry) int { return b.Points - a.Points }) {
		p.errorf("leaderboard not sorted by points descending")
	}
	for i, e := range fx.Leaderboard {
		u, ok := byID[e.UserID]
		if !ok {
			p.errorf("leaderboard[%d]: unknown user %q", i, e.UserID)
			continue
		}
		if u.Points != e.Points || u.Name != e.Name || u.SelectedRiver != e.River {
			p.errorf("leaderboard[%d]: entry %+v does not match user %s", i, e, u.Email)
		}
	}
	return p
}

// ── Environment ──

func validateEnvironment(fx fixture) *phase {
	p := &phase{name: "Environmental records present and in range"}

	seen := make(map[domain.River]bool)
	for _, e := range fx.Environment {
		seen[e.River] = true
		switch e.DataSource {
		case domain.SourceNASA, domain.SourceSimulated, domain.SourceMixed:
		default:
			p.errorf("%s: invalid dataSource %q", e.River, e.DataSource)
		}
		for name, v := range map[string]float64{
			"vegetation": e.Vegetation,
			"pollution":  e.Pollution,
			"waterLevel": e.WaterLevel,
		} {
			if v < 0 || v > 100 {
				p.errorf("%s: %s = %v outside [0, 100]", e.River, name, v)
			}
		}
		if e.LastUpdated.IsZero() {
			p.errorf("%s: missing lastUpdated", e.River)
		}
	}
	for _, r := range domain.Rivers() {
		if !seen[r] {
			p.errorf("%s: missing environmental record", r)
		}
	}
	return p
}

// ── Database ──

func validateDatabase(fx fixture, dbPath string) *phase {
	p := &phase{name: "Database matches fixture"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(dbPath, logger)
	if err != nil {
		p.errorf("open %s: %v", dbPath, err)
		return p
	}
	defer store.Close()

	ctx := context.Background()
	for _, want := range fx.Users {
		got, err := store.GetUser(ctx, want.ID)
		if err != nil {
			p.errorf("user %s: %v", want.Email, err)
			continue
		}
		if got.Email != want.Email || got.Points != want.Points || got.Level != want.Level {
			p.errorf("user %s: database has %s/%d pts/level %d, fixture %s/%d pts/level %d",
				want.ID, got.Email, got.Points, got.Level, want.Email, want.Points, want.Level)
		}
	}
	for _, want := range fx.Environment {
		got, err := store.GetEnvironmentalData(ctx, want.River)
		if err != nil {
			p.errorf("environment %s: %v", want.River, err)
			continue
		}
		if !floatEq(got.Temperature, want.Temperature) || !floatEq(got.WaterLevel, want.WaterLevel) {
			p.errorf("environment %s: database %+v, fixture %+v", want.River, got, want)
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

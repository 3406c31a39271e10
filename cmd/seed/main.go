// Command seed loads the sample users and environmental records into a
// SQLite database and can write a reproducible JSON fixture of the seeded
// data together with simulated NASA snapshots for every river.
//
// Usage:
//
//	go run ./cmd/seed \
//	  -db data/breathing_rivers.db \
//	  -reset \
//	  -fixture-out data/mock/breathing_rivers_fixture.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/adapter/nasa"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/sqlite"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/couchcryptid/breathing-rivers/internal/service"
	"github.com/jonboulle/clockwork"
)

var fixtureTime = time.Date(2025, time.January, 1, 6, 0, 0, 0, time.UTC)

type fixture struct {
	GeneratedAt time.Time                        `json:"generatedAt"`
	Seed        uint64                           `json:"seed"`
	Users       []domain.User                    `json:"users"`
	Leaderboard []domain.LeaderboardEntry        `json:"leaderboard"`
	Environment []domain.EnvironmentalData       `json:"environment"`
	NASA        map[domain.River]domain.Snapshot `json:"nasa"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "data/breathing_rivers.db", "SQLite database to seed")
	reset := flag.Bool("reset", false, "delete all existing data before seeding")
	fixtureOut := flag.String("fixture-out", "", "optional output path for a JSON fixture")
	seed := flag.Uint64("seed", 42, "random seed for simulated NASA data")
	flag.Parse()

	if *seed == 0 {
		return fmt.Errorf("-seed must be non-zero for reproducible output")
	}

	// Fixed clock for reproducible timestamps.
	clock := clockwork.NewFakeClockAt(fixtureTime)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(*dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	generator := nasa.NewGenerator(domain.NewRand(*seed), clock, logger, metrics)
	svc := service.New(store, generator, domain.NewRandStream(*seed, domain.StreamSimulation), logger, metrics)
	ctx := context.Background()

	if *reset {
		if err := svc.Reset(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		log.Printf("cleared %s", *dbPath)
	}

	seeded, err := svc.SeedSampleData(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if seeded {
		log.Printf("seeded sample data into %s", *dbPath)
	} else {
		log.Printf("%s already has users, nothing seeded (use -reset to start over)", *dbPath)
	}

	board, err := svc.Leaderboard(ctx)
	if err != nil {
		return err
	}
	printLeaderboard(board)

	if *fixtureOut == "" {
		return nil
	}
	fx, err := buildFixture(ctx, store, generator, board, *seed)
	if err != nil {
		return err
	}
	if err := writeJSON(*fixtureOut, fx); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *fixtureOut)
	return nil
}

func buildFixture(ctx context.Context, repo domain.Repository, src domain.NASASource, board []domain.LeaderboardEntry, seed uint64) (fixture, error) {
	users, err := repo.ListUsers(ctx)
	if err != nil {
		return fixture{}, err
	}
	fx := fixture{
		GeneratedAt: domain.Now(),
		Seed:        seed,
		Users:       users,
		Leaderboard: board,
		NASA:        make(map[domain.River]domain.Snapshot, len(domain.Rivers())),
	}
	// Sequential so the random stream, and therefore the output, is stable.
	for _, r := range domain.Rivers() {
		e, err := repo.GetEnvironmentalData(ctx, r)
		if err != nil {
			return fixture{}, fmt.Errorf("environment %s: %w", r, err)
		}
		fx.Environment = append(fx.Environment, e)

		var snap domain.Snapshot
		if snap.WaterQuality, err = src.WaterQuality(ctx, r); err != nil {
			return fixture{}, err
		}
		if snap.Satellite, err = src.Satellite(ctx, r); err != nil {
			return fixture{}, err
		}
		if snap.Weather, err = src.Weather(ctx, r); err != nil {
			return fixture{}, err
		}
		fx.NASA[r] = snap
	}
	return fx, nil
}

func printLeaderboard(board []domain.LeaderboardEntry) {
	fmt.Println("\n=== Leaderboard ===")
	for i, e := range board {
		fmt.Printf("  %2d. %-16s %-8s %5d pts  %d activities\n", i+1, e.Name, e.River, e.Points, e.Activities)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Persistence.
	Datastore      string `env:"DATASTORE" validate:"oneof=sqlite memory"`
	DBPath         string `env:"DB_PATH" validate:"required_if=Datastore sqlite"`
	SeedSampleData bool   `env:"SEED_SAMPLE_DATA"`

	// Simulated NASA data.
	NASACacheTTL  time.Duration `env:"NASA_CACHE_TTL" validate:"gt=0"`
	NASACacheSize int           `env:"NASA_CACHE_SIZE" validate:"gt=0"`
	NASASeed      uint64        `env:"NASA_SEED"`

	// RefreshSchedule is a cron spec for the environmental refresh job.
	// Empty disables the job.
	RefreshSchedule string `env:"REFRESH_SCHEDULE"`

	// Activity publisher.
	KafkaEnabled       bool          `env:"KAFKA_ENABLED"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS"`
	KafkaActivityTopic string        `env:"KAFKA_ACTIVITY_TOPIC"`
	BatchSize          int           `env:"BATCH_SIZE"`
	BatchFlushInterval time.Duration `env:"BATCH_FLUSH_INTERVAL"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report failures by environment variable name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("NASA_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("NASA_CACHE_SIZE", "64")
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("NASA_SEED", "0"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid NASA_SEED")
	}

	seedData, err := parseBool("SEED_SAMPLE_DATA", "true")
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", "false")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Datastore:      sharedcfg.EnvOrDefault("DATASTORE", "sqlite"),
		DBPath:         sharedcfg.EnvOrDefault("DB_PATH", "data/breathing_rivers.db"),
		SeedSampleData: seedData,

		NASACacheTTL:  cacheTTL,
		NASACacheSize: cacheSize,
		NASASeed:      seed,

		RefreshSchedule: sharedcfg.EnvOrDefault("REFRESH_SCHEDULE", "0 * * * *"),

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaActivityTopic: sharedcfg.EnvOrDefault("KAFKA_ACTIVITY_TOPIC", "river-activities"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field rules and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s", verrs[0].Field())
		}
		return err
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaActivityTopic == "" {
			return errors.New("KAFKA_ACTIVITY_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBool(key, def string) (bool, error) {
	b, err := strconv.ParseBool(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}

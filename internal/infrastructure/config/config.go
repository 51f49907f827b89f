// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"agency-itinerary-service/internal/domain/entity"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite"
)

// DefaultMongoDB holds the segmentation run log
const DefaultMongoDB = "agency_itinerary"

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion     string
	LogLevel       string
	ExitOnComplete bool

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Source
	SourceProfile string
	SourceDriver  string
	SourceDSN     string
	SourceTable   string
	SourceOrderBy string

	// Sink
	SinkDriver  string
	SinkDSN     string
	TargetTable string

	// Batching
	BatchSize int
	Workers   int

	// MongoDB run log, disabled when MongoURI is empty
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Rule overrides on top of the selected profile
	Overrides RuleOverrides
}

// RuleOverrides are raw env values; empty means keep the profile value.
type RuleOverrides struct {
	LegColumns       string
	MaxLegs          string
	GapThreshold     string
	AnchorPolicy     string
	ValidYearMin     string
	ValidYearMax     string
	OverflowPolicy   string
	MaxNumericDigits string
	DedupKey         string
	SplitRoundTrips  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	sourceDriver := strings.ToLower(getEnv("SOURCE_DRIVER", DriverDuckDB))
	sourceDSN := getEnv("SOURCE_DSN", "data/my_db.duckdb")

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:     getEnv("APP_VERSION", "1.0.0"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ExitOnComplete: getEnvAsBool("EXIT_ON_COMPLETE", true),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		SourceProfile: strings.ToUpper(getEnv("SOURCE_PROFILE", ProfileBluestar)),
		SourceDriver:  sourceDriver,
		SourceDSN:     sourceDSN,
		SourceTable:   getEnv("SOURCE_TABLE", ""),
		SourceOrderBy: getEnv("SOURCE_ORDER_BY", ""),

		SinkDriver:  strings.ToLower(getEnv("SINK_DRIVER", sourceDriver)),
		SinkDSN:     getEnv("SINK_DSN", sourceDSN),
		TargetTable: getEnv("TARGET_TABLE", ""),

		BatchSize: getEnvAsInt("BATCH_SIZE", 100000),
		Workers:   getEnvAsInt("WORKERS", runtime.NumCPU()),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", DefaultMongoDB),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		Overrides: RuleOverrides{
			LegColumns:       getEnv("LEG_COLUMNS", ""),
			MaxLegs:          getEnv("MAX_LEGS", ""),
			GapThreshold:     getEnv("GAP_THRESHOLD", ""),
			AnchorPolicy:     getEnv("ANCHOR_POLICY", ""),
			ValidYearMin:     getEnv("VALID_YEAR_MIN", ""),
			ValidYearMax:     getEnv("VALID_YEAR_MAX", ""),
			OverflowPolicy:   getEnv("OVERFLOW_POLICY", ""),
			MaxNumericDigits: getEnv("MAX_NUMERIC_DIGITS", ""),
			DedupKey:         getEnv("DEDUP_KEY", ""),
			SplitRoundTrips:  getEnv("SPLIT_ROUND_TRIPS", ""),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.SourceDriver {
	case DriverPostgres, DriverDuckDB, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported SOURCE_DRIVER %q", c.SourceDriver))
	}
	switch c.SinkDriver {
	case DriverPostgres, DriverPgx, DriverDuckDB, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported SINK_DRIVER %q", c.SinkDriver))
	}
	if c.SourceDSN == "" {
		errs = append(errs, errors.New("SOURCE_DSN is required"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// ResolveProfile applies table names and rule overrides to a profile and
// validates the result.
func (c *Config) ResolveProfile(p entity.SourceProfile) (entity.SourceProfile, error) {
	if c.SourceTable != "" {
		p.SourceTable = c.SourceTable
	}
	if c.TargetTable != "" {
		p.TargetTable = c.TargetTable
	}

	var err error
	o := c.Overrides
	r := &p.Rules
	errs := []error{
		overrideInt("LEG_COLUMNS", o.LegColumns, &r.LegColumns),
		overrideInt("MAX_LEGS", o.MaxLegs, &r.MaxLegs),
		overrideInt("VALID_YEAR_MIN", o.ValidYearMin, &r.YearMin),
		overrideInt("VALID_YEAR_MAX", o.ValidYearMax, &r.YearMax),
		overrideInt("MAX_NUMERIC_DIGITS", o.MaxNumericDigits, &r.MaxNumericDigits),
	}
	if o.GapThreshold != "" {
		if r.GapThreshold, err = time.ParseDuration(o.GapThreshold); err != nil {
			errs = append(errs, fmt.Errorf("GAP_THRESHOLD: %w", err))
		}
	}
	if o.AnchorPolicy != "" {
		if r.Anchor, err = entity.ParseAnchorPolicy(o.AnchorPolicy); err != nil {
			errs = append(errs, fmt.Errorf("ANCHOR_POLICY: %w", err))
		}
	}
	if o.OverflowPolicy != "" {
		if r.Overflow, err = entity.ParseOverflowPolicy(o.OverflowPolicy); err != nil {
			errs = append(errs, fmt.Errorf("OVERFLOW_POLICY: %w", err))
		}
	}
	if o.DedupKey != "" {
		if r.DedupKey, err = entity.ParseDedupKeyPolicy(o.DedupKey); err != nil {
			errs = append(errs, fmt.Errorf("DEDUP_KEY: %w", err))
		}
	}
	if o.SplitRoundTrips != "" {
		if r.SplitRoundTrips, err = strconv.ParseBool(o.SplitRoundTrips); err != nil {
			errs = append(errs, fmt.Errorf("SPLIT_ROUND_TRIPS: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return p, err
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid profile %s: %w", p.Name, err)
	}
	return p, nil
}

func overrideInt(key, raw string, dst *int) error {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

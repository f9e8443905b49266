package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultReleaseDir    = "GEFlight/Release 2/PublicLeaderboardSet"
	defaultOutputName    = "estimated_arrival_benchmark.csv"
	defaultSubjectPrefix = "benchmark.arrivals"
)

type Config struct {
	DataPath          string
	ReleasePath       string // days.csv and one folder per day
	OutputPath        string
	DayConcurrency    int
	DatabaseURL       string
	RunID             string
	NATSURL           string
	NATSSubjectPrefix string
	MetricsAddr       string
	LogLevel          string
	LogFormat         string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Root of the data tree; DataPath is the name older tooling exported.
	cfg.DataPath = firstNonEmpty(os.Getenv("DATA_PATH"), os.Getenv("DataPath"))
	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH must be set")
	}

	release := getenvDefault("RELEASE_DIR", defaultReleaseDir)
	if filepath.IsAbs(release) {
		cfg.ReleasePath = release
	} else {
		cfg.ReleasePath = filepath.Join(cfg.DataPath, filepath.FromSlash(release))
	}

	cfg.OutputPath = getenvDefault("OUTPUT_PATH", filepath.Join(cfg.DataPath, "GEFlight", defaultOutputName))

	if v := os.Getenv("DAY_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid DAY_CONCURRENCY: %q", v)
		}
		cfg.DayConcurrency = n
	} else {
		cfg.DayConcurrency = 1
	}

	// Optional Postgres sink
	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"))
	cfg.RunID = getenvDefault("RUN_ID", strings.TrimSuffix(filepath.Base(cfg.OutputPath), filepath.Ext(cfg.OutputPath)))

	// Optional NATS sink
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSSubjectPrefix = getenvDefault("NATS_SUBJECT_PREFIX", defaultSubjectPrefix)

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "console"))
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

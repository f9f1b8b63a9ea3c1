package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// DatabaseURL selects the Postgres model store. When empty, SQLitePath is used.
	DatabaseURL string
	SQLitePath  string

	RedisAddr     string
	RouteCacheTTL time.Duration

	NATSURL     string
	NATSSubject string

	AutoTrain    bool
	TrainSamples int
	TrainSeed    int64

	DistanceEstimator string
	Location          *time.Location
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              Get("PORT", "5002"),
		DatabaseURL:       firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN")),
		SQLitePath:        Get("SQLITE_PATH", "data/models.db"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubject:       Get("NATS_SUBJECT", "routes.sequenced"),
		DistanceEstimator: Get("DISTANCE_ESTIMATOR", "planar"),
	}

	// Accept ML_PORT as an alias for PORT.
	if v := os.Getenv("ML_PORT"); v != "" && os.Getenv("PORT") == "" {
		cfg.Port = v
	}

	ttl, err := getInt("ROUTE_CACHE_TTL_SEC", 300)
	if err != nil || ttl < 0 {
		return nil, fmt.Errorf("invalid ROUTE_CACHE_TTL_SEC: %q", os.Getenv("ROUTE_CACHE_TTL_SEC"))
	}
	cfg.RouteCacheTTL = time.Duration(ttl) * time.Second

	cfg.AutoTrain = getBool("AUTO_TRAIN", true)

	samples, err := getInt("TRAIN_SAMPLES", 100)
	if err != nil || samples <= 0 {
		return nil, fmt.Errorf("invalid TRAIN_SAMPLES: %q", os.Getenv("TRAIN_SAMPLES"))
	}
	cfg.TrainSamples = samples

	seed, err := getInt("TRAIN_SEED", 42)
	if err != nil {
		return nil, fmt.Errorf("invalid TRAIN_SEED: %q", os.Getenv("TRAIN_SEED"))
	}
	cfg.TrainSeed = int64(seed)

	switch strings.ToLower(cfg.DistanceEstimator) {
	case "planar", "haversine":
	default:
		return nil, fmt.Errorf("invalid DISTANCE_ESTIMATOR: %q", cfg.DistanceEstimator)
	}

	tzName := os.Getenv("TZ")
	if tzName == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

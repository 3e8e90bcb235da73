package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// FloodProfile selects the notation scheme and tolerance policy.
	FloodProfile string
	Policy       domain.Policy

	// OS Names geocoding configuration.
	OSAPIKey         string
	OSNamesURL       string
	GeocodeTimeout   time.Duration
	GeocodeCacheSize int

	// Environment Agency flood-monitoring configuration.
	FloodAPIURL             string
	FloodAPITimeout         time.Duration
	PolygonFetchTimeout     time.Duration
	PolygonFetchConcurrency int
	PolygonCacheSize        int

	// Session storage.
	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration

	// Subscription events.
	KafkaEnabled           bool
	KafkaBrokers           []string
	KafkaSubscriptionTopic string

	// Tracing.
	TracingEnabled     bool
	TracingExporter    string
	OTLPEndpoint       string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	profile := sharedcfg.EnvOrDefault("FLOOD_PROFILE", "location")
	policy, err := domain.PolicyByName(profile)
	if err != nil {
		return nil, fmt.Errorf("invalid FLOOD_PROFILE: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FloodProfile: profile,
		Policy:       policy,

		OSAPIKey:    os.Getenv("OS_API_KEY"),
		OSNamesURL:  sharedcfg.EnvOrDefault("OS_NAMES_URL", "https://api.os.uk/search/names/v1/find"),
		FloodAPIURL: sharedcfg.EnvOrDefault("FLOOD_API_URL", "https://environment.data.gov.uk/flood-monitoring"),

		SessionBackend: sharedcfg.EnvOrDefault("SESSION_BACKEND", SessionBackendMemory),
		RedisAddr:      sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers:           sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSubscriptionTopic: sharedcfg.EnvOrDefault("KAFKA_SUBSCRIPTION_TOPIC", "flood-subscription-events"),

		TracingExporter: sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout"),
		OTLPEndpoint:    sharedcfg.EnvOrDefault("OTLP_ENDPOINT", "localhost:4317"),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"GEOCODE_TIMEOUT", "5s", &cfg.GeocodeTimeout},
		{"FLOOD_API_TIMEOUT", "10s", &cfg.FloodAPITimeout},
		{"POLYGON_FETCH_TIMEOUT", "8s", &cfg.PolygonFetchTimeout},
		{"SESSION_TTL", "2h", &cfg.SessionTTL},
	}
	for _, d := range durations {
		if *d.dest, err = parsePositiveDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"GEOCODE_CACHE_SIZE", 1000, &cfg.GeocodeCacheSize},
		{"POLYGON_FETCH_CONCURRENCY", 8, &cfg.PolygonFetchConcurrency},
		{"POLYGON_CACHE_SIZE", 500, &cfg.PolygonCacheSize},
	}
	for _, n := range ints {
		if *n.dest, err = parsePositiveInt(n.key, n.def); err != nil {
			return nil, err
		}
	}

	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = parseBool("TRACING_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.TracingSampleRatio, err = parseRatio("TRACING_SAMPLE_RATIO", 1.0); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OSAPIKey == "" {
		return errors.New("OS_API_KEY is required")
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when SESSION_BACKEND is redis")
		}
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q: want memory or redis", c.SessionBackend)
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaSubscriptionTopic == "" {
			return errors.New("KAFKA_SUBSCRIPTION_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if c.TracingEnabled && c.TracingExporter != "stdout" && c.TracingExporter != "otlp" {
		return fmt.Errorf("invalid TRACING_EXPORTER %q: want stdout or otlp", c.TracingExporter)
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}

func parseRatio(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < 0 || r > 1 {
		return 0, fmt.Errorf("invalid %s: want a number between 0 and 1", key)
	}
	return r, nil
}

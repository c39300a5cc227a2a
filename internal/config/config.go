package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Port        string
	MetricsPort string
	Env         string
	LogLevel    string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JWTSecret        string
	JWTExpirationDur time.Duration
	PipelineAPIKey   string

	// Cycle coordination. Empty RedisAddr means an in-process lock.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Forecast ForecastConfig
	Schedule ScheduleConfig
}

// ForecastConfig carries the tuning knobs of the forecasting and anomaly
// cycles.
type ForecastConfig struct {
	HorizonDays     int
	LookbackDays    int
	MinTrendPoints  int
	HistoryMinDays  int
	HistoryMinRows  int
	HistorySpanDays int

	AnomalyWindowDays int
	AnomalyZThreshold float64
	AnomalyMinSamples int
	AnnotateRemarks   bool

	DedupWindow              time.Duration
	RecommendationWindowDays int
	ShortageRetentionDays    int
	LowStockRetentionDays    int
	SnapshotRetentionDays    int

	CycleTimeout time.Duration
}

// ScheduleConfig holds the cron expressions (minute hour dom month dow, UTC)
// of the scheduled jobs.
type ScheduleConfig struct {
	SnapshotCron    string
	ForecastCron    string
	AnomalyCron     string
	MaintenanceCron string
}

// DefaultForecastConfig returns the tuning used when nothing is configured.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		HorizonDays:              14,
		LookbackDays:             30,
		MinTrendPoints:           5,
		HistoryMinDays:           30,
		HistoryMinRows:           1,
		HistorySpanDays:          30,
		AnomalyWindowDays:        7,
		AnomalyZThreshold:        2.5,
		AnomalyMinSamples:        5,
		AnnotateRemarks:          false,
		DedupWindow:              24 * time.Hour,
		RecommendationWindowDays: 7,
		ShortageRetentionDays:    30,
		LowStockRetentionDays:    90,
		SnapshotRetentionDays:    365,
		CycleTimeout:             5 * time.Minute,
	}
}

var (
	appConfig *Config
	mu        sync.Mutex
)

// Load reads configuration from an optional .env file, an optional config
// file named by CONFIG_FILE and the environment, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	appConfig = cfg
	mu.Unlock()
	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	mu.Lock()
	cfg := appConfig
	mu.Unlock()
	if cfg != nil {
		return cfg
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// MigrationURL returns the postgres:// URL golang-migrate expects.
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Validate rejects tuning values the cycles cannot run with.
func (c *Config) Validate() error {
	f := c.Forecast
	switch {
	case f.HorizonDays <= 0:
		return fmt.Errorf("FORECAST_HORIZON_DAYS must be positive, got %d", f.HorizonDays)
	case f.LookbackDays < 2:
		return fmt.Errorf("FORECAST_LOOKBACK_DAYS must be at least 2, got %d", f.LookbackDays)
	case f.MinTrendPoints < 2:
		return fmt.Errorf("FORECAST_MIN_POINTS must be at least 2, got %d", f.MinTrendPoints)
	case f.AnomalyWindowDays <= 0:
		return fmt.Errorf("ANOMALY_WINDOW_DAYS must be positive, got %d", f.AnomalyWindowDays)
	case f.AnomalyZThreshold <= 0:
		return fmt.Errorf("ANOMALY_Z_THRESHOLD must be positive, got %v", f.AnomalyZThreshold)
	case f.AnomalyMinSamples < 2:
		return fmt.Errorf("ANOMALY_MIN_SAMPLES must be at least 2, got %d", f.AnomalyMinSamples)
	case f.DedupWindow <= 0:
		return fmt.Errorf("ALERT_DEDUP_WINDOW must be positive, got %s", f.DedupWindow)
	case f.CycleTimeout <= 0:
		return fmt.Errorf("CYCLE_TIMEOUT must be positive, got %s", f.CycleTimeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultForecastConfig()

	v.SetDefault("PORT", "8080")
	v.SetDefault("METRICS_PORT", "9091")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "stockwise")
	v.SetDefault("DB_PASSWORD", "stockwise")
	v.SetDefault("DB_NAME", "stockwise")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "fallback-secret-key-for-dev-only")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("PIPELINE_API_KEY", "")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("FORECAST_HORIZON_DAYS", d.HorizonDays)
	v.SetDefault("FORECAST_LOOKBACK_DAYS", d.LookbackDays)
	v.SetDefault("FORECAST_MIN_POINTS", d.MinTrendPoints)
	v.SetDefault("HISTORY_MIN_DAYS", d.HistoryMinDays)
	v.SetDefault("HISTORY_MIN_ROWS", d.HistoryMinRows)
	v.SetDefault("HISTORY_SPAN_DAYS", d.HistorySpanDays)
	v.SetDefault("ANOMALY_WINDOW_DAYS", d.AnomalyWindowDays)
	v.SetDefault("ANOMALY_Z_THRESHOLD", d.AnomalyZThreshold)
	v.SetDefault("ANOMALY_MIN_SAMPLES", d.AnomalyMinSamples)
	v.SetDefault("ANOMALY_ANNOTATE_REMARKS", d.AnnotateRemarks)
	v.SetDefault("ALERT_DEDUP_WINDOW", d.DedupWindow.String())
	v.SetDefault("RECOMMENDATION_WINDOW_DAYS", d.RecommendationWindowDays)
	v.SetDefault("SHORTAGE_RETENTION_DAYS", d.ShortageRetentionDays)
	v.SetDefault("LOW_STOCK_RETENTION_DAYS", d.LowStockRetentionDays)
	v.SetDefault("SNAPSHOT_RETENTION_DAYS", d.SnapshotRetentionDays)
	v.SetDefault("CYCLE_TIMEOUT", d.CycleTimeout.String())

	v.SetDefault("SNAPSHOT_CRON", "0 1 * * *")
	v.SetDefault("FORECAST_CRON", "0 22 * * 0")
	v.SetDefault("ANOMALY_CRON", "30 23 * * *")
	v.SetDefault("MAINTENANCE_CRON", "0 2 1 * *")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:        v.GetString("PORT"),
		MetricsPort: v.GetString("METRICS_PORT"),
		Env:         v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTExpirationDur: durationOr(v, "JWT_EXPIRES_IN", 24*time.Hour),
		PipelineAPIKey:   v.GetString("PIPELINE_API_KEY"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		Forecast: ForecastConfig{
			HorizonDays:              v.GetInt("FORECAST_HORIZON_DAYS"),
			LookbackDays:             v.GetInt("FORECAST_LOOKBACK_DAYS"),
			MinTrendPoints:           v.GetInt("FORECAST_MIN_POINTS"),
			HistoryMinDays:           v.GetInt("HISTORY_MIN_DAYS"),
			HistoryMinRows:           v.GetInt("HISTORY_MIN_ROWS"),
			HistorySpanDays:          v.GetInt("HISTORY_SPAN_DAYS"),
			AnomalyWindowDays:        v.GetInt("ANOMALY_WINDOW_DAYS"),
			AnomalyZThreshold:        v.GetFloat64("ANOMALY_Z_THRESHOLD"),
			AnomalyMinSamples:        v.GetInt("ANOMALY_MIN_SAMPLES"),
			AnnotateRemarks:          v.GetBool("ANOMALY_ANNOTATE_REMARKS"),
			DedupWindow:              durationOr(v, "ALERT_DEDUP_WINDOW", 24*time.Hour),
			RecommendationWindowDays: v.GetInt("RECOMMENDATION_WINDOW_DAYS"),
			ShortageRetentionDays:    v.GetInt("SHORTAGE_RETENTION_DAYS"),
			LowStockRetentionDays:    v.GetInt("LOW_STOCK_RETENTION_DAYS"),
			SnapshotRetentionDays:    v.GetInt("SNAPSHOT_RETENTION_DAYS"),
			CycleTimeout:             durationOr(v, "CYCLE_TIMEOUT", 5*time.Minute),
		},

		Schedule: ScheduleConfig{
			SnapshotCron:    v.GetString("SNAPSHOT_CRON"),
			ForecastCron:    v.GetString("FORECAST_CRON"),
			AnomalyCron:     v.GetString("ANOMALY_CRON"),
			MaintenanceCron: v.GetString("MAINTENANCE_CRON"),
		},
	}
}

// durationOr parses key as a Go duration, warning and falling back on bad input.
func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

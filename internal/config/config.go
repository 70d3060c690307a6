package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without /usr/share/zoneinfo

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Dashboard DashboardConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string // dashboard HTTP port
	BotPort            string // dialog webhook port
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables change notifications
	DashboardPublicURL string
}

type StoreConfig struct {
	WorkoutsFile   string
	UserNamesFile  string
	Encoding       string // "current" or "legacy"
	Timezone       string
	VocabularyFile string // optional YAML seed override
}

type DashboardConfig struct {
	RefreshInterval time.Duration
	WatchFile       bool
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string // OTLP/HTTP collector, host:port
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8055"),
			BotPort:            getEnv("BOT_PORT", "8056"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			DashboardPublicURL: getEnv("DASHBOARD_PUBLIC_URL", "http://localhost:8055/"),
		},
		Store: StoreConfig{
			WorkoutsFile:   getEnv("WORKOUTS_FILE", "workouts.csv"),
			UserNamesFile:  getEnv("USER_NAMES_FILE", "user_names.json"),
			Encoding:       strings.ToLower(getEnv("STORE_ENCODING", "current")),
			Timezone:       getEnv("TIMEZONE", "Europe/Moscow"),
			VocabularyFile: getEnv("VOCABULARY_FILE", ""),
		},
		Dashboard: DashboardConfig{
			RefreshInterval: getEnvAsDuration("DASHBOARD_REFRESH_INTERVAL", time.Minute),
			WatchFile:       getEnvAsBool("DASHBOARD_WATCH_FILE", false),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// IsProduction reports whether GO_ENV selects production logging.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Location resolves the configured civil time zone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Store.Timezone)
	if err != nil {
		log.Printf("[WARN] Unknown TIMEZONE %q, using local time: %v", c.Store.Timezone, err)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	// Plain integers are read as seconds.
	if seconds := getEnvAsInt(key, 0); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

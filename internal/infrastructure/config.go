package infrastructure

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	Schedule  ScheduleConfig
	Backup    BackupConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver          string // sqlite, postgres or memory
	Path            string // sqlite file
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds the shared secret guarding the local API.
// An empty secret leaves the API open, which is the default for a local install.
type AuthConfig struct {
	SecretKey   string
	TokenExpiry time.Duration
	Issuer      string
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	Environment     string
	OTLPEndpoint    string
	MetricsEndpoint string
	SampleRatio     float64
}

// ScheduleConfig holds review-scheduling knobs
type ScheduleConfig struct {
	Cooldown        time.Duration
	RefreshInterval time.Duration
	Timezone        string
}

// BackupConfig holds the secondary-store settings
type BackupConfig struct {
	Enabled  bool
	Path     string
	Debounce time.Duration
}

// CORSConfig holds CORS configuration options
type CORSConfig struct {
	AllowOrigins []string
	MaxAge       int
}

// LoadConfig loads configuration from environment variables with sensible defaults
func LoadConfig() *Config {
	dataDir := getEnv("LEETCURVE_DATA_DIR", defaultDataDir())
	environment := getEnv("ENVIRONMENT", "development")

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "127.0.0.1"),
			Port:         getEnvInt("SERVER_PORT", 8420),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			Environment:  environment,
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", filepath.Join(dataDir, "leetcurve.db")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "leetcurve"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Auth: AuthConfig{
			SecretKey:   getEnv("AUTH_SECRET", ""),
			TokenExpiry: time.Duration(getEnvInt("AUTH_TOKEN_EXPIRY_HOURS", 24*90)) * time.Hour,
			Issuer:      getEnv("AUTH_ISSUER", "leetcurve"),
		},
		Telemetry: TelemetryConfig{
			Enabled:         getEnvBool("TELEMETRY_ENABLED", false),
			ServiceName:     getEnv("SERVICE_NAME", "leetcurve"),
			ServiceVersion:  getEnv("SERVICE_VERSION", "1.0.0"),
			Environment:     environment,
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			MetricsEndpoint: getEnv("METRICS_ENDPOINT", "/metrics"),
			SampleRatio:     getEnvFloat("OTEL_SAMPLE_RATIO", 0.1),
		},
		Schedule: ScheduleConfig{
			Cooldown:        time.Duration(getEnvIntAtLeast("SCHEDULE_COOLDOWN_MINUTES", 60, 0)) * time.Minute,
			RefreshInterval: time.Duration(getEnvIntAtLeast("SCHEDULE_REFRESH_MINUTES", 60, 1)) * time.Minute,
			Timezone:        getEnv("SCHEDULE_TIMEZONE", "Local"),
		},
		Backup: BackupConfig{
			Enabled:  getEnvBool("BACKUP_ENABLED", true),
			Path:     getEnv("BACKUP_PATH", filepath.Join(dataDir, "backup.json")),
			Debounce: time.Duration(getEnvIntAtLeast("BACKUP_DEBOUNCE_SECONDS", 5, 0)) * time.Second,
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"chrome-extension://*",
				"safari-web-extension://*",
				"https://leetcode.com",
				"https://leetcode.cn",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			}),
			MaxAge: getEnvInt("CORS_MAX_AGE", 86400),
		},
	}
}

// Location resolves the configured timezone used for activity days.
// Unknown names fall back to the process local zone.
func (c *ScheduleConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// defaultDataDir is ~/.leetcurve, or the working directory when home is unknown
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".leetcurve"
	}
	return filepath.Join(home, ".leetcurve")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvIntAtLeast is getEnvInt that also falls back to the default when the
// value is below minValue
func getEnvIntAtLeast(key string, defaultValue, minValue int) int {
	if value := getEnvInt(key, defaultValue); value >= minValue {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma separated environment variable or returns a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

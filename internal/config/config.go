package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Database        DatabaseConfig        `yaml:"database"`
	Redis           RedisConfig           `yaml:"redis"`
	Logger          LoggerConfig          `yaml:"logger"`
	JWT             JWTConfig             `yaml:"jwt"`
	CORS            CORSConfig            `yaml:"cors"`
	RateLimit       RateLimitConfig       `yaml:"rate_limit"`
	PermissionCache PermissionCacheConfig `yaml:"permission_cache"`
	Audit           AuditConfig           `yaml:"audit"`
	Metrics         MetricsConfig         `yaml:"metrics"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is postgres or sqlite. For sqlite DBName is the database file.
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// RedisConfig holds Redis configuration.
// URL (redis:// 형식) takes precedence over Host/Port.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	URL      string `yaml:"url"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `yaml:"level"`
	OutputPath string `yaml:"output_path"`
	Encoding   string `yaml:"encoding"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
	// IstioMode trusts the mesh to verify signatures and only parses claims
	IstioMode bool `yaml:"istio_mode"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	BurstSize         int  `yaml:"burst_size"`
}

// PermissionCacheConfig holds the Redis memo cache settings for resolved permissions
type PermissionCacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// AuditConfig holds audit log retention settings
type AuditConfig struct {
	RetentionDays int    `yaml:"retention_days"`
	PurgeSchedule string `yaml:"purge_schedule"`
}

// MetricsConfig holds business metrics collection settings
type MetricsConfig struct {
	CollectInterval time.Duration `yaml:"collect_interval"`
	CollectTimeout  time.Duration `yaml:"collect_timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	cfg := getDefaultConfig()

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Config file not found, using environment variables and defaults\n")
	}

	cfg.overrideFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8010",
			Mode:            "debug",
			BasePath:        "/api",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "",
			DBName:          "fieldops_db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     false,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Logger: LoggerConfig{
			Level:      "info",
			OutputPath: "stdout",
			Encoding:   "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		PermissionCache: PermissionCacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Audit: AuditConfig{
			RetentionDays: 180,
			PurgeSchedule: "@hourly",
		},
		Metrics: MetricsConfig{
			CollectInterval: 60 * time.Second,
			CollectTimeout:  10 * time.Second,
		},
	}
}

func (c *Config) overrideFromEnv() {
	setString(&c.Server.Port, "SERVER_PORT")
	setString(&c.Server.BasePath, "SERVER_BASE_PATH")
	switch env := os.Getenv("ENV"); env {
	case "":
	case "dev":
		c.Server.Mode = "debug"
	case "prod":
		c.Server.Mode = "release"
	default:
		c.Server.Mode = env
	}

	// DATABASE_URL 먼저 적용하고 개별 DB_* 변수로 덮어씀
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		if err := c.Database.applyURL(databaseURL); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to parse DATABASE_URL: %v\n", err)
		}
	}
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setBool(&c.Database.AutoMigrate, "DB_AUTO_MIGRATE")

	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.Redis.URL, "REDIS_URL")

	setString(&c.Logger.Level, "LOG_LEVEL")

	// SECRET_KEY wins over JWT_SECRET
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.JWT.Secret, "SECRET_KEY")
	setBool(&c.JWT.IstioMode, "ISTIO_JWT_MODE")

	setString(&c.CORS.AllowedOrigins, "CORS_ORIGINS")

	setBool(&c.RateLimit.Enabled, "RATE_LIMIT_ENABLED")
	setInt(&c.RateLimit.RequestsPerMinute, "RATE_LIMIT_PER_MINUTE")
	setInt(&c.RateLimit.BurstSize, "RATE_LIMIT_BURST")
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 60
	}

	setBool(&c.PermissionCache.Enabled, "PERMISSION_CACHE_ENABLED")
	setDuration(&c.PermissionCache.TTL, "PERMISSION_CACHE_TTL")

	setInt(&c.Audit.RetentionDays, "AUDIT_RETENTION_DAYS")
	if c.Audit.PurgeSchedule == "" {
		c.Audit.PurgeSchedule = "@hourly"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true"
	}
}

// setInt ignores values that are not integers
func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	switch c.Database.Driver {
	case "sqlite":
	case "", "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port == "" {
			return fmt.Errorf("database port is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" && !c.JWT.IstioMode {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit retention days must not be negative")
	}
	return nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.DBName
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslmode,
	)
}

// Addr returns the host:port address of Redis
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Origins splits the comma separated allowed origins
func (c *CORSConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// applyURL fills the connection fields from a postgres:// URL.
// On error d is left untouched.
func (d *DatabaseConfig) applyURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid DATABASE_URL format: %w", err)
	}

	switch {
	case u.Scheme != "postgresql" && u.Scheme != "postgres":
		return fmt.Errorf("invalid scheme '%s': must be 'postgresql' or 'postgres'", u.Scheme)
	case u.User == nil:
		return fmt.Errorf("missing user credentials")
	case u.Hostname() == "":
		return fmt.Errorf("missing host")
	case strings.Trim(u.Path, "/") == "":
		return fmt.Errorf("missing database name")
	}

	d.Host = u.Hostname()
	d.Port = u.Port()
	if d.Port == "" {
		d.Port = "5432"
	}
	d.User = u.User.Username()
	d.Password, _ = u.User.Password()
	d.DBName = strings.Trim(u.Path, "/")
	if sslmode := u.Query().Get("sslmode"); sslmode != "" {
		d.SSLMode = sslmode
	}
	return nil
}

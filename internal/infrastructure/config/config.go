package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreMemory    = "memory"
	StoreFile      = "file"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreRedis     = "redis"
	StoreFirestore = "firestore"
)

// Asset backends
const (
	AssetInline     = "inline"
	AssetS3         = "s3"
	AssetFilesystem = "filesystem"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firestore FirestoreConfig
	Storage   StorageConfig
	Asset     AssetConfig
	Autosave  AutosaveConfig
	Export    ExportConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	SwaggerEnabled   bool
	HSTSEnabled      bool
}

// StoreConfig selects where invoice snapshots are kept
type StoreConfig struct {
	Driver string // memory, file, sqlite, postgres, redis, firestore
	Path   string // directory for file, database file for sqlite
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	// AutoMigrate applies the embedded migrations at startup
	AutoMigrate bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// FirestoreConfig holds Firestore settings
type FirestoreConfig struct {
	ProjectID  string
	Collection string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string
}

// AssetConfig controls how uploaded logos are kept
type AssetConfig struct {
	Backend          string // inline, s3, filesystem
	InlineLimitBytes int
	MaxUploadBytes   int
	Dir              string // filesystem backend directory
	BaseURL          string // filesystem backend public URL prefix
}

// AutosaveConfig holds the debounced save and session settings
type AutosaveConfig struct {
	Debounce        time.Duration
	SaveTimeout     time.Duration
	SessionIdleTTL  time.Duration
	CleanupInterval time.Duration
}

// ExportConfig holds export renderer settings
type ExportConfig struct {
	ChromePath    string
	Timeout       time.Duration
	MaxConcurrent int
	PaperSize     string // A4, LETTER
	JPEGQuality   int
	DeviceScale   float64
	NoSandbox     bool
	DisableGPU    bool
}

// AuthConfig holds bearer token settings.
// With an empty secret the owner id is taken from the X-User-ID header.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	ProfilingEnabled  bool
	PyroscopeURL      string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INVOICE_ prefix (e.g., INVOICE_STORE_DRIVER)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			SwaggerEnabled:   v.GetBool("http.swagger_enabled"),
			HSTSEnabled:      v.GetBool("http.hsts_enabled"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("store.driver")),
			Path:   v.GetString("store.path"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Firestore: FirestoreConfig{
			ProjectID:  v.GetString("firestore.project_id"),
			Collection: v.GetString("firestore.collection"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
		},
		Asset: AssetConfig{
			Backend:          strings.ToLower(v.GetString("asset.backend")),
			InlineLimitBytes: v.GetInt("asset.inline_limit_bytes"),
			MaxUploadBytes:   v.GetInt("asset.max_upload_bytes"),
			Dir:              v.GetString("asset.dir"),
			BaseURL:          v.GetString("asset.base_url"),
		},
		Autosave: AutosaveConfig{
			Debounce:        v.GetDuration("autosave.debounce"),
			SaveTimeout:     v.GetDuration("autosave.save_timeout"),
			SessionIdleTTL:  v.GetDuration("autosave.session_idle_ttl"),
			CleanupInterval: v.GetDuration("autosave.cleanup_interval"),
		},
		Export: ExportConfig{
			ChromePath:    v.GetString("export.chrome_path"),
			Timeout:       v.GetDuration("export.timeout"),
			MaxConcurrent: v.GetInt("export.max_concurrent"),
			PaperSize:     strings.ToUpper(v.GetString("export.paper_size")),
			JPEGQuality:   v.GetInt("export.jpeg_quality"),
			DeviceScale:   v.GetFloat64("export.device_scale"),
			NoSandbox:     v.GetBool("export.no_sandbox"),
			DisableGPU:    v.GetBool("export.disable_gpu"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeURL:      v.GetString("telemetry.pyroscope_url"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "invoice-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second // exports can take a while
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreMemory
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Driver {
		case StoreFile:
			cfg.Store.Path = "data/invoices"
		case StoreSQLite:
			cfg.Store.Path = "data/invoices.db"
		}
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "invoices"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "invoice:doc:"
	}
	if cfg.Firestore.Collection == "" {
		cfg.Firestore.Collection = "users"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Asset.Backend == "" {
		cfg.Asset.Backend = AssetInline
	}
	if cfg.Asset.InlineLimitBytes == 0 {
		cfg.Asset.InlineLimitBytes = 800000
	}
	if cfg.Asset.MaxUploadBytes == 0 {
		cfg.Asset.MaxUploadBytes = 5 << 20
	}
	if cfg.Asset.Dir == "" {
		cfg.Asset.Dir = "data/assets"
	}
	if cfg.Asset.BaseURL == "" {
		cfg.Asset.BaseURL = "/assets"
	}
	if cfg.Autosave.Debounce == 0 {
		cfg.Autosave.Debounce = time.Second
	}
	if cfg.Autosave.SaveTimeout == 0 {
		cfg.Autosave.SaveTimeout = 10 * time.Second
	}
	if cfg.Autosave.SessionIdleTTL == 0 {
		cfg.Autosave.SessionIdleTTL = 30 * time.Minute
	}
	if cfg.Autosave.CleanupInterval == 0 {
		cfg.Autosave.CleanupInterval = 5 * time.Minute
	}
	if cfg.Export.Timeout == 0 {
		cfg.Export.Timeout = 30 * time.Second
	}
	if cfg.Export.MaxConcurrent == 0 {
		cfg.Export.MaxConcurrent = 2
	}
	if cfg.Export.PaperSize == "" {
		cfg.Export.PaperSize = "A4"
	}
	if cfg.Export.JPEGQuality == 0 {
		cfg.Export.JPEGQuality = 98
	}
	if cfg.Export.DeviceScale == 0 {
		cfg.Export.DeviceScale = 2
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Telemetry.PyroscopeURL == "" {
		cfg.Telemetry.PyroscopeURL = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreFile, StoreSQLite, StorePostgres, StoreRedis, StoreFirestore:
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Store.Driver == StoreFirestore && c.Firestore.ProjectID == "" {
		return fmt.Errorf("firestore.project_id is required when store.driver is firestore")
	}

	switch c.Asset.Backend {
	case AssetInline, AssetFilesystem:
	case AssetS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when asset.backend is s3")
		}
	default:
		return fmt.Errorf("asset.backend %q is not supported", c.Asset.Backend)
	}
	if c.Asset.InlineLimitBytes < 0 {
		return fmt.Errorf("asset.inline_limit_bytes cannot be negative")
	}
	if c.Asset.MaxUploadBytes < c.Asset.InlineLimitBytes {
		return fmt.Errorf("asset.max_upload_bytes (%d) cannot be below asset.inline_limit_bytes (%d)",
			c.Asset.MaxUploadBytes, c.Asset.InlineLimitBytes)
	}

	if c.Autosave.Debounce < 0 {
		return fmt.Errorf("autosave.debounce cannot be negative")
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be between 1 and 100, got %d", c.Export.JPEGQuality)
	}
	switch c.Export.PaperSize {
	case "A4", "LETTER":
	default:
		return fmt.Errorf("export.paper_size %q is not supported", c.Export.PaperSize)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters in production")
		}
		if c.Store.Driver == StoreMemory {
			return fmt.Errorf("store.driver cannot be 'memory' in production")
		}
		if c.Store.Driver == StorePostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Gateway   GatewayConfig   `json:"gateway"`
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
	Cache     CacheConfig     `json:"cache"`
	Downloads DownloadsConfig `json:"downloads"`
	Scheduler SchedulerConfig `json:"scheduler"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	AllowedOrigin   string        `json:"allowed_origin"`
	SessionIdleTTL  time.Duration `json:"session_idle_ttl"`
}

// GatewayConfig points at the upstream analytics API that owns folders and reports
type GatewayConfig struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`
}

// DatabaseConfig represents the submission log database. An empty Host disables it.
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "json" or "console"
}

// CacheConfig
type CacheConfig struct {
	TemplateTTL time.Duration `json:"template_ttl"`
}

// DownloadsConfig controls where downloaded report files are archived
type DownloadsConfig struct {
	Sink     string `json:"sink"` // "", "local" or "s3"
	LocalDir string `json:"local_dir"`
	S3Bucket string `json:"s3_bucket"`
	S3Region string `json:"s3_region"`
	S3Prefix string `json:"s3_prefix"`

	S3Endpoint        string `json:"s3_endpoint"`
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
}

// SchedulerConfig holds recurring report submissions
type SchedulerConfig struct {
	ServiceToken string         `json:"service_token"`
	Jobs         []RecurringJob `json:"jobs"`
	Timeout      time.Duration  `json:"timeout"`
}

// RecurringJob is one cron-driven report submission
type RecurringJob struct {
	Name                string `json:"name"`
	Cron                string `json:"cron"`
	TemplateID          int    `json:"template_id"`
	Title               string `json:"title"`
	ProjectID           *int   `json:"project_id,omitempty"`
	SelectedDataSources []int  `json:"selected_data_sources,omitempty"`
	BrandFolderIDs      []int  `json:"brand_folder_ids,omitempty"`
	CompetitorFolderIDs []int  `json:"competitor_folder_ids,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigin:   "*",
			SessionIdleTTL:  8 * time.Hour,
		},
		Gateway: GatewayConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   30 * time.Second,
			UserAgent: "report-portal-backend",
		},
		Database: DatabaseConfig{
			Port:           5432,
			DBName:         "report_portal",
			SSLMode:        "disable",
			MaxConnections: 10,
			MaxIdleConns:   2,
			MaxLifetime:    30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Cache: CacheConfig{
			TemplateTTL: 5 * time.Minute,
		},
		Downloads: DownloadsConfig{
			LocalDir: "downloads",
			S3Region: "us-east-1",
		},
		Scheduler: SchedulerConfig{
			Timeout: 2 * time.Minute,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if origin := os.Getenv("SERVER_ALLOWED_ORIGIN"); origin != "" {
		config.Server.AllowedOrigin = origin
	}
	if ttl := os.Getenv("SESSION_IDLE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Server.SessionIdleTTL = d
		}
	}
	if baseURL := os.Getenv("GATEWAY_BASE_URL"); baseURL != "" {
		config.Gateway.BaseURL = baseURL
	}
	if timeout := os.Getenv("GATEWAY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Gateway.Timeout = d
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if sink := os.Getenv("DOWNLOADS_SINK"); sink != "" {
		config.Downloads.Sink = sink
	}
	if bucket := os.Getenv("DOWNLOADS_S3_BUCKET"); bucket != "" {
		config.Downloads.S3Bucket = bucket
	}
	if endpoint := os.Getenv("DOWNLOADS_S3_ENDPOINT"); endpoint != "" {
		config.Downloads.S3Endpoint = endpoint
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		config.Downloads.S3AccessKeyID = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		config.Downloads.S3SecretAccessKey = secret
	}
	if token := os.Getenv("SCHEDULER_SERVICE_TOKEN"); token != "" {
		config.Scheduler.ServiceToken = token
	}
}

// Validate checks the settings the services cannot start without
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base_url is required")
	}
	switch c.Downloads.Sink {
	case "", "local":
	case "s3":
		if c.Downloads.S3Bucket == "" {
			return fmt.Errorf("downloads s3_bucket is required for the s3 sink")
		}
	default:
		return fmt.Errorf("unknown downloads sink %q", c.Downloads.Sink)
	}
	for i, job := range c.Scheduler.Jobs {
		if job.Cron == "" || job.TemplateID == 0 {
			return fmt.Errorf("scheduler job %d: cron and template_id are required", i)
		}
	}
	return nil
}

// Enabled reports whether a submission log database is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

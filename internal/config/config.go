package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Views     ViewsConfig     `yaml:"views" envconfig:"VIEWS"`

	// baseDir is the directory relative paths are resolved against
	baseDir string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	Compression     bool          `yaml:"compression" envconfig:"COMPRESSION"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"required_if=EnableCORS true"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`

	// Rotation of the log file
	MaxSizeMB  int  `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int  `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int  `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"gte=0"`
	Compress   bool `yaml:"compress" envconfig:"COMPRESS"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"omitempty,oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"omitempty,oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// DataConfig lists the static files each dataset is parsed from. Relative
// paths are resolved against Dir. Files of one dataset are merged in order,
// later files winning for duplicate days.
type DataConfig struct {
	Dir        string   `yaml:"dir" envconfig:"DIR"`
	Bulletins  string   `yaml:"bulletins" envconfig:"BULLETINS"`
	Treasury   []string `yaml:"treasury" envconfig:"TREASURY"`
	Rates      []string `yaml:"rates" envconfig:"RATES"`
	Credit     []string `yaml:"credit" envconfig:"CREDIT"`
	Watchlist  []string `yaml:"watchlist" envconfig:"WATCHLIST"`
	Industries []string `yaml:"industries" envconfig:"INDUSTRIES"`
	FedFutures []string `yaml:"fed_futures" envconfig:"FED_FUTURES"`
}

// ViewsConfig tunes the derived views
type ViewsConfig struct {
	MaxGapDays  int    `yaml:"max_gap_days" envconfig:"MAX_GAP_DAYS" validate:"gte=0"`
	CycleMonths int    `yaml:"cycle_months" envconfig:"CYCLE_MONTHS" validate:"min=1,max=120"`
	ChartWeeks  int    `yaml:"chart_weeks" envconfig:"CHART_WEEKS" validate:"min=1,max=520"`
	Calendar    string `yaml:"calendar" envconfig:"CALENDAR"`
}

// Address returns the listen address of the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load builds the configuration from defaults, the first config file found
// in the usual locations and MARKETDESK_* environment variables, in that
// order of precedence (environment wins).
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg.baseDir = baseDirOf(configFile)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			Compression:     true,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			Output:     "console",
			FilePath:   DefaultLogFile,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Data: DataConfig{
			Dir:       DefaultDataDir,
			Bulletins: DefaultBulletinsFile,
		},
		Views: ViewsConfig{
			MaxGapDays:  DefaultMaxGapDays,
			CycleMonths: DefaultCycleMonths,
			ChartWeeks:  DefaultChartWeeks,
			Calendar:    DefaultCalendar,
		},
	}
}

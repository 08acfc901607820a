package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Market Desk"
	AppVersion = "1.4.0"

	// EnvPrefix namespaces environment variables (MARKETDESK_SERVER_PORT, ...)
	EnvPrefix = "MARKETDESK"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultRequestTimeout = 30 * time.Second

	// File Paths (relative to the config file)
	DefaultDataDir       = "data"
	DefaultBulletinsFile = "bulletins.yaml"
	DefaultLogFile       = "logs/marketdesk.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 28

	// Views
	DefaultMaxGapDays  = 21
	DefaultCycleMonths = 12
	DefaultChartWeeks  = 52
	DefaultCalendar    = "xnys"

	// API Endpoints
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)

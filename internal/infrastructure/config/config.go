package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment    string               `mapstructure:"environment"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Logger         LoggerConfig         `mapstructure:"logger"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	Casino         CasinoConfig         `mapstructure:"casino"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Poller         PollerConfig         `mapstructure:"poller"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// GatewayConfig contains payment gateway connection settings
type GatewayConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}

// CasinoConfig contains casino backend connection settings
type CasinoConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}

// ReconciliationConfig contains reconciliation engine settings
type ReconciliationConfig struct {
	GatewayPollInterval time.Duration `mapstructure:"gatewayPollInterval"` // seconds
	ManualReviewSLA     time.Duration `mapstructure:"manualReviewSla"`     // hours
	RetryBaseDelay      time.Duration `mapstructure:"retryBaseDelay"`      // seconds
	RetryMaxDelay       time.Duration `mapstructure:"retryMaxDelay"`       // seconds
	RetryFactor         float64       `mapstructure:"retryFactor"`
	MaxRetries          int           `mapstructure:"maxRetries"`
	SweepBatchSize      int           `mapstructure:"sweepBatchSize"`
}

// PollerConfig contains status poller settings
type PollerConfig struct {
	Interval  time.Duration `mapstructure:"interval"` // seconds
	BatchSize int           `mapstructure:"batchSize"`
	Workers   int           `mapstructure:"workers"`
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	MaxConnections int    `yaml:"max_connections"`
	MinConnections int    `yaml:"min_connections"`
	SSLMode        string `yaml:"ssl_mode"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	SecretKey     string        `yaml:"secret_key"`
	TokenExpiry   time.Duration `yaml:"token_expiry"`
	SessionExpiry time.Duration `yaml:"session_expiry"`
	Issuer        string        `yaml:"issuer"`
}

// RetentionConfig controls the activity retention sweep
type RetentionConfig struct {
	DaysToKeep int `yaml:"days_to_keep"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a configuration with default values
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "pulsetrack",
			Password:       "pulsetrack_dev",
			Database:       "pulsetrack_dev",
			MaxConnections: 20,
			MinConnections: 2,
			SSLMode:        "disable",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			SecretKey:     "your-secret-key-change-in-production",
			TokenExpiry:   24 * time.Hour,
			SessionExpiry: 24 * time.Hour,
			Issuer:        "pulsetrack",
		},
		Retention: RetentionConfig{
			DaysToKeep: 30,
		},
	}
}

// getConfigPath returns the configuration file path
func getConfigPath() string {
	if path := os.Getenv("PULSETRACK_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// applyEnv overrides configuration with environment variables
func (c *Config) applyEnv() {
	if host := os.Getenv("PULSETRACK_SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("PULSETRACK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if readTimeout := os.Getenv("PULSETRACK_SERVER_READ_TIMEOUT"); readTimeout != "" {
		if d, err := time.ParseDuration(readTimeout); err == nil {
			c.Server.ReadTimeout = d
		}
	}
	if writeTimeout := os.Getenv("PULSETRACK_SERVER_WRITE_TIMEOUT"); writeTimeout != "" {
		if d, err := time.ParseDuration(writeTimeout); err == nil {
			c.Server.WriteTimeout = d
		}
	}

	if host := os.Getenv("PULSETRACK_DATABASE_HOST"); host != "" {
		c.Database.Host = host
	}
	if port := os.Getenv("PULSETRACK_DATABASE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Database.Port = p
		}
	}
	if user := os.Getenv("PULSETRACK_DATABASE_USER"); user != "" {
		c.Database.User = user
	}
	if password := os.Getenv("PULSETRACK_DATABASE_PASSWORD"); password != "" {
		c.Database.Password = password
	}
	if database := os.Getenv("PULSETRACK_DATABASE_DATABASE"); database != "" {
		c.Database.Database = database
	}
	if maxConns := os.Getenv("PULSETRACK_DATABASE_MAX_CONNECTIONS"); maxConns != "" {
		if m, err := strconv.Atoi(maxConns); err == nil {
			c.Database.MaxConnections = m
		}
	}
	if minConns := os.Getenv("PULSETRACK_DATABASE_MIN_CONNECTIONS"); minConns != "" {
		if m, err := strconv.Atoi(minConns); err == nil {
			c.Database.MinConnections = m
		}
	}
	if sslMode := os.Getenv("PULSETRACK_DATABASE_SSL_MODE"); sslMode != "" {
		c.Database.SSLMode = sslMode
	}

	if level := os.Getenv("PULSETRACK_LOGGING_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("PULSETRACK_LOGGING_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	if secretKey := os.Getenv("PULSETRACK_AUTH_SECRET_KEY"); secretKey != "" {
		c.Auth.SecretKey = secretKey
	}
	if tokenExpiry := os.Getenv("PULSETRACK_AUTH_TOKEN_EXPIRY"); tokenExpiry != "" {
		if d, err := time.ParseDuration(tokenExpiry); err == nil {
			c.Auth.TokenExpiry = d
		}
	}
	if sessionExpiry := os.Getenv("PULSETRACK_AUTH_SESSION_EXPIRY"); sessionExpiry != "" {
		if d, err := time.ParseDuration(sessionExpiry); err == nil {
			c.Auth.SessionExpiry = d
		}
	}
	if issuer := os.Getenv("PULSETRACK_AUTH_ISSUER"); issuer != "" {
		c.Auth.Issuer = issuer
	}

	if days := os.Getenv("PULSETRACK_RETENTION_DAYS_TO_KEEP"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			c.Retention.DaysToKeep = d
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("max connections must be at least 1")
	}

	if c.Database.MinConnections < 0 {
		return fmt.Errorf("min connections cannot be negative")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("min connections cannot be greater than max connections")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}

	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	if c.Retention.DaysToKeep < 1 {
		return fmt.Errorf("retention days must be at least 1")
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=10",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
